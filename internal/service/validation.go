package service

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/SergeiKhy/quicklink/internal/codec"
)

const (
	maxURLLength   = 2048
	minAliasLength = 3
	maxAliasLength = 20
	minExpiryDays  = 1
	maxExpiryDays  = 365
	secondsPerDay  = 86400
)

var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// reservedAliases collide with routes served next to the redirect path.
var reservedAliases = map[string]struct{}{
	"shorten": {},
	"health":  {},
	"stats":   {},
	"api":     {},
	"admin":   {},
	"urls":    {},
}

// validateURL rejects destinations that are malformed, point at private networks, or at ourselves.
func validateURL(raw, ownHost string) error {
	if strings.TrimSpace(raw) == "" {
		return invalidURL("url cannot be empty")
	}
	if len(raw) > maxURLLength {
		return invalidURL("url exceeds maximum length of 2048 characters")
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalidURL("url must start with http:// or https://")
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return invalidURL("url must have a host")
	}
	if ownHost != "" && host == ownHost {
		return invalidURL("cannot shorten urls from this domain")
	}
	if isPrivateHost(host) {
		return invalidURL("cannot shorten localhost or private network urls")
	}
	return nil
}

func isPrivateHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsLinkLocalUnicast()
}

func validateAlias(alias string) error {
	if len(alias) < minAliasLength {
		return invalidAlias("custom alias must be at least 3 characters")
	}
	if len(alias) > maxAliasLength {
		return invalidAlias("custom alias cannot exceed 20 characters")
	}
	if !aliasPattern.MatchString(alias) {
		return invalidAlias("custom alias can only contain letters, numbers, and hyphens")
	}
	if _, reserved := reservedAliases[strings.ToLower(alias)]; reserved {
		return invalidAlias("custom alias '" + alias + "' is a reserved keyword")
	}
	// generated codes own every fixed-width string of the alphabet
	if codec.IsCode(alias) {
		return invalidAlias("custom alias cannot be exactly 7 letters and digits, which is the format of generated short codes; use a different length or add a hyphen")
	}
	return nil
}

func validateExpiryDays(days *int) error {
	if days == nil {
		return nil
	}
	if *days < minExpiryDays || *days > maxExpiryDays {
		return ErrInvalidExpiry
	}
	return nil
}

// ValidCode reports whether s can name a stored record: either a generated
// code or a string satisfying the alias format.
func ValidCode(s string) bool {
	if codec.IsCode(s) {
		return true
	}
	return len(s) >= minAliasLength && len(s) <= maxAliasLength && aliasPattern.MatchString(s)
}

// hostOf extracts the lower-cased host of the service base URL.
func hostOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
