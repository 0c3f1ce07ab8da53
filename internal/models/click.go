package models

// ClickEvent is emitted once per successful redirect.
type ClickEvent struct {
	Code      string `json:"short_code"`
	Timestamp int64  `json:"timestamp"`
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
}
