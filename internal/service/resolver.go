package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SergeiKhy/quicklink/internal/models"
	"github.com/SergeiKhy/quicklink/internal/repository"
	"go.uber.org/zap"
)

// Visitor identifies who followed a short link.
type Visitor struct {
	IPAddress string
	UserAgent string
}

// RedirectResolver maps a short code to its destination and accounts for the visit.
type RedirectResolver interface {
	Resolve(ctx context.Context, code string, visitor Visitor) (string, error)
}

// ResolverOptions configures a RedirectResolver.
type ResolverOptions struct {
	Timeout time.Duration
	Now     func() time.Time
}

type redirectResolver struct {
	urls    repository.URLRepository
	clicks  ClickRecorder
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewRedirectResolver creates a resolver that reports each hit to clicks.
func NewRedirectResolver(urls repository.URLRepository, clicks ClickRecorder, opts ResolverOptions, logger *zap.Logger) RedirectResolver {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &redirectResolver{
		urls:    urls,
		clicks:  clicks,
		timeout: opts.Timeout,
		now:     opts.Now,
		logger:  logger,
	}
}

// Resolve fails with ErrNotFound for unknown codes and with a *GoneError for
// deactivated or expired ones. Expired records stay in the store.
func (r *redirectResolver) Resolve(ctx context.Context, code string, visitor Visitor) (string, error) {
	lookupCtx, cancel := withTimeout(ctx, r.timeout)
	record, err := r.urls.GetByCode(lookupCtx, code)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			r.logger.Debug("Unknown short code", zap.String("short_code", code))
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get url: %w", err)
	}

	now := r.now().Unix()
	if !record.Active {
		r.logger.Debug("Deactivated short code accessed", zap.String("short_code", code))
		return "", &GoneError{Code: code, Reason: ReasonDeactivated}
	}
	if record.Expired(now) {
		r.logger.Debug("Expired short code accessed", zap.String("short_code", code))
		return "", &GoneError{Code: code, Reason: ReasonExpired}
	}

	r.clicks.Record(ctx, &models.ClickEvent{
		Code:      code,
		Timestamp: now,
		IPAddress: visitor.IPAddress,
		UserAgent: visitor.UserAgent,
	})

	return record.Destination, nil
}
