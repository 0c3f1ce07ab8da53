package models

// URLRecord is the stored mapping from a short code to its destination.
// Timestamps are unix seconds.
type URLRecord struct {
	Code        string `json:"short_code"`
	Destination string `json:"long_url"`
	CreatedAt   int64  `json:"created_at"`
	ExpiresAt   *int64 `json:"expires_at,omitempty"`
	Active      bool   `json:"is_active"`
	IsAlias     bool   `json:"custom_alias"`
	ClickCount  int64  `json:"click_count"`
}

// Clone returns a deep copy, so callers never share the ExpiresAt pointer.
func (r *URLRecord) Clone() *URLRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.ExpiresAt != nil {
		v := *r.ExpiresAt
		c.ExpiresAt = &v
	}
	return &c
}

// Expired reports whether the record's expiry lies strictly before now.
func (r *URLRecord) Expired(now int64) bool {
	return r.ExpiresAt != nil && *r.ExpiresAt < now
}

type CreateURLInput struct {
	Destination string
	Alias       *string
	ExpiryDays  *int
}
