package service

import (
	"errors"
	"fmt"
)

var (
	ErrAllocationUnavailable = errors.New("identifier allocation unavailable")
	ErrAliasConflict         = errors.New("custom alias already in use")
	ErrAliasInvalid          = errors.New("invalid custom alias")
	ErrInvalidExpiry         = errors.New("expiry must be between 1 and 365 days")
	ErrInvalidURL            = errors.New("invalid url")
	ErrNotFound              = errors.New("short url not found")
	ErrGone                  = errors.New("short url is no longer available")
)

const (
	ReasonDeactivated = "deactivated"
	ReasonExpired     = "expired"
)

// GoneError reports a code that exists but cannot be used any more.
type GoneError struct {
	Code   string
	Reason string
}

func (e *GoneError) Error() string {
	return fmt.Sprintf("short url %q is %s", e.Code, e.Reason)
}

func (e *GoneError) Unwrap() error { return ErrGone }

// invalidURL and invalidAlias keep the sentinel matchable while carrying a user-facing message.
func invalidURL(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidURL, msg)
}

func invalidAlias(msg string) error {
	return fmt.Errorf("%w: %s", ErrAliasInvalid, msg)
}
