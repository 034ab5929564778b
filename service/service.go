package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-game-config/configuration"
)

// Option configures a ConfigurationService.
type Option func(*ConfigurationService)

// WithLogger sets the logger. Defaults to zap.NewNop.
func WithLogger(logger *zap.Logger) Option {
	return func(s *ConfigurationService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used to stamp timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ConfigurationService) {
		if now != nil {
			s.now = now
		}
	}
}

// ConfigurationService validates input and stamps timestamps before handing
// records to the repository. In production the repository is the cached
// decorator, so GetByID is read-through and writes invalidate.
//
// Repository errors are returned unchanged; callers classify them with
// errors.Is against the configuration error kinds.
type ConfigurationService struct {
	repo   configuration.Repository
	logger *zap.Logger
	now    func() time.Time
}

// New creates a ConfigurationService over repo.
func New(repo configuration.Repository, opts ...Option) *ConfigurationService {
	s := &ConfigurationService{
		repo:   repo,
		logger: zap.NewNop(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetByID returns the record with id, or (nil, nil) when there is none.
func (s *ConfigurationService) GetByID(ctx context.Context, id string) (*configuration.Record, error) {
	if id == "" {
		return nil, configuration.NewValidationError("id", "cannot be blank")
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("get configuration failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Debug("get configuration", zap.String("id", id), zap.Bool("found", rec != nil))
	return rec, nil
}

// GetByName returns the record named name, or (nil, nil) when there is none.
func (s *ConfigurationService) GetByName(ctx context.Context, name string) (*configuration.Record, error) {
	if err := configuration.ValidateKey(name); err != nil {
		return nil, err
	}
	return s.repo.GetByName(ctx, name)
}

// GetAll lists records. Filtering and pagination happen in the repository.
func (s *ConfigurationService) GetAll(ctx context.Context, opts configuration.ListOptions) ([]configuration.Record, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	records, err := s.repo.GetAll(ctx, opts)
	if err != nil {
		s.logger.Warn("list configurations failed", zap.Error(err))
		return nil, err
	}
	s.logger.Debug("list configurations",
		zap.String("search", opts.SearchTerm),
		zap.Int("count", len(records)),
	)
	return records, nil
}

// Create validates candidate and stores it under a fresh id.
func (s *ConfigurationService) Create(ctx context.Context, candidate configuration.Record) (*configuration.Record, error) {
	if err := configuration.ValidateForCreate(candidate); err != nil {
		return nil, err
	}

	now := s.timestamp()
	candidate.ID = ""
	candidate.CreatedAt = now
	candidate.UpdatedAt = now

	created, err := s.repo.Create(ctx, candidate)
	if err != nil {
		s.logger.Warn("create configuration failed", zap.String("name", candidate.Name), zap.Time("requested_at", now), zap.Error(err))
		return nil, err
	}
	s.logger.Info("configuration created",
		zap.String("id", created.ID),
		zap.String("name", created.Name),
		zap.Time("requested_at", now),
		zap.Time("created_at", created.CreatedAt),
	)
	return created, nil
}

// Update validates candidate and overwrites the stored record with the
// same id.
func (s *ConfigurationService) Update(ctx context.Context, candidate configuration.Record) (*configuration.Record, error) {
	if err := configuration.ValidateForUpdate(candidate); err != nil {
		return nil, err
	}

	now := s.timestamp()
	candidate.UpdatedAt = now

	updated, err := s.repo.Update(ctx, candidate)
	if err != nil {
		s.logger.Warn("update configuration failed", zap.String("id", candidate.ID), zap.Time("requested_at", now), zap.Error(err))
		return nil, err
	}
	s.logger.Info("configuration updated",
		zap.String("id", updated.ID),
		zap.String("name", updated.Name),
		zap.Time("requested_at", now),
		zap.Time("updated_at", updated.UpdatedAt),
	)
	return updated, nil
}

// Delete removes the record with id.
func (s *ConfigurationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return configuration.NewValidationError("id", "cannot be blank")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete configuration failed", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("configuration deleted", zap.String("id", id))
	return nil
}

// Exists reports whether a record named key is stored.
func (s *ConfigurationService) Exists(ctx context.Context, key string) (bool, error) {
	if err := configuration.ValidateKey(key); err != nil {
		return false, err
	}
	return s.repo.Exists(ctx, key)
}

// Ping checks that the backing store answers. Repositories without a ping
// are assumed healthy.
func (s *ConfigurationService) Ping(ctx context.Context) error {
	p, ok := s.repo.(configuration.Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		s.logger.Error("database ping failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *ConfigurationService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
