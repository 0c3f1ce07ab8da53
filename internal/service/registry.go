package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SergeiKhy/quicklink/internal/codec"
	"github.com/SergeiKhy/quicklink/internal/models"
	"github.com/SergeiKhy/quicklink/internal/repository"
	"go.uber.org/zap"
)

// URLRegistry creates short URLs and manages their lifecycle.
type URLRegistry interface {
	Create(ctx context.Context, input *models.CreateURLInput) (*models.URLRecord, error)
	// UpdateExpiry sets the expiry to now plus days, or clears it when days is nil.
	UpdateExpiry(ctx context.Context, code string, days *int) (*models.URLRecord, error)
	SoftDelete(ctx context.Context, code string) error
	// Stats returns the record whatever its active or expired state.
	Stats(ctx context.Context, code string) (*models.URLRecord, error)
}

// RegistryOptions configures a URLRegistry.
type RegistryOptions struct {
	// BaseURL is the public address of the service. Destinations on its host are refused.
	BaseURL string
	// Timeout bounds each store call. Zero leaves the caller's context as is.
	Timeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type urlRegistry struct {
	urls    repository.URLRepository
	ids     IDSource
	ownHost string
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewURLRegistry creates a registry. ids is only used for generated codes.
func NewURLRegistry(urls repository.URLRepository, ids IDSource, opts RegistryOptions, logger *zap.Logger) URLRegistry {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &urlRegistry{
		urls:    urls,
		ids:     ids,
		ownHost: hostOf(opts.BaseURL),
		timeout: opts.Timeout,
		now:     opts.Now,
		logger:  logger,
	}
}

// Create validates the input and stores a new active record. Nothing is
// written unless every check passes.
//
// Alias claims are a read followed by a write with no lock between them, so
// two instances racing for the same alias can both succeed and the later
// write wins. Closing the gap needs a conditional put from the store.
func (s *urlRegistry) Create(ctx context.Context, input *models.CreateURLInput) (*models.URLRecord, error) {
	if err := validateURL(input.Destination, s.ownHost); err != nil {
		return nil, err
	}
	if err := validateExpiryDays(input.ExpiryDays); err != nil {
		return nil, err
	}

	var (
		code    string
		isAlias bool
	)
	if input.Alias != nil && *input.Alias != "" {
		alias := *input.Alias
		if err := validateAlias(alias); err != nil {
			return nil, err
		}

		exists, err := s.exists(ctx, alias)
		if err != nil {
			return nil, fmt.Errorf("failed to check alias: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("%w: '%s'", ErrAliasConflict, alias)
		}
		code, isAlias = alias, true
	} else {
		id, err := s.ids.NextID(ctx)
		if err != nil {
			return nil, err
		}
		code, err = codec.Encode(id)
		if err != nil {
			return nil, err
		}
	}

	createdAt := s.now().Unix()
	record := &models.URLRecord{
		Code:        code,
		Destination: input.Destination,
		CreatedAt:   createdAt,
		Active:      true,
		IsAlias:     isAlias,
	}
	if input.ExpiryDays != nil {
		expiresAt := createdAt + int64(*input.ExpiryDays)*secondsPerDay
		record.ExpiresAt = &expiresAt
	}

	if err := s.save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save url: %w", err)
	}

	s.logger.Info("Short URL created",
		zap.String("short_code", code),
		zap.String("long_url", record.Destination),
		zap.Bool("custom_alias", isAlias),
	)
	return record, nil
}

func (s *urlRegistry) UpdateExpiry(ctx context.Context, code string, days *int) (*models.URLRecord, error) {
	record, err := s.get(ctx, code)
	if err != nil {
		return nil, err
	}
	if !record.Active {
		return nil, &GoneError{Code: code, Reason: ReasonDeactivated}
	}
	if err := validateExpiryDays(days); err != nil {
		return nil, err
	}

	var expiresAt *int64
	if days != nil {
		v := s.now().Unix() + int64(*days)*secondsPerDay
		expiresAt = &v
	}

	// the store refuses the write if the record was deactivated after the read
	if err := s.setExpiresAt(ctx, code, expiresAt); err != nil {
		switch {
		case errors.Is(err, repository.ErrURLInactive):
			return nil, &GoneError{Code: code, Reason: ReasonDeactivated}
		case errors.Is(err, repository.ErrURLNotFound):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update expiry: %w", err)
	}

	record.ExpiresAt = expiresAt
	s.logger.Info("Short URL expiry updated",
		zap.String("short_code", code),
		zap.Int64p("expires_at", expiresAt),
	)
	return record, nil
}

func (s *urlRegistry) SoftDelete(ctx context.Context, code string) error {
	record, err := s.get(ctx, code)
	if err != nil {
		return err
	}
	if !record.Active {
		return nil
	}

	if err := s.deactivate(ctx, code); err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to deactivate url: %w", err)
	}

	s.logger.Info("Short URL deactivated", zap.String("short_code", code))
	return nil
}

func (s *urlRegistry) Stats(ctx context.Context, code string) (*models.URLRecord, error) {
	return s.get(ctx, code)
}

func (s *urlRegistry) get(ctx context.Context, code string) (*models.URLRecord, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	record, err := s.urls.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get url: %w", err)
	}
	return record, nil
}

func (s *urlRegistry) exists(ctx context.Context, code string) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.urls.Exists(ctx, code)
}

func (s *urlRegistry) save(ctx context.Context, record *models.URLRecord) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.urls.Save(ctx, record)
}

func (s *urlRegistry) setExpiresAt(ctx context.Context, code string, expiresAt *int64) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.urls.SetExpiresAt(ctx, code, expiresAt)
}

func (s *urlRegistry) deactivate(ctx context.Context, code string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.urls.Deactivate(ctx, code)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
