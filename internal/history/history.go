// Package history keeps an optional SQLite journal of the settings ampurr
// has applied.
package history

import (
	"context"
	"time"

	"codeberg.org/mutker/ampurr/internal/errors"
	"codeberg.org/mutker/ampurr/internal/logger"
	"github.com/google/uuid"
)

type service struct {
	repo Repository
	cfg  Config
	log  logger.Logger
}

// No-op implementation
type noopRecorder struct{}

func NewService(cfg Config, log logger.Logger) (Recorder, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	// If history is disabled, return a no-op recorder
	if !cfg.Enabled {
		log.Debug().Msg("History disabled, using no-op recorder")
		return Noop(), nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create history repository")
		return nil, err
	}

	log.Debug().
		Str("db_path", cfg.DBPath).
		Msg("History service initialized")

	return &service{
		repo: repo,
		cfg:  cfg,
		log:  log,
	}, nil
}

// Noop returns a Recorder that stores nothing.
func Noop() Recorder {
	return &noopRecorder{}
}

func (s *service) Record(ctx context.Context, change *Change) error {
	errFactory := errors.New()

	if change == nil || change.Kind == "" {
		return errFactory.New(ErrInvalidChange)
	}

	if change.ID == "" {
		change.ID = uuid.NewString()
	}
	if change.Timestamp.IsZero() {
		change.Timestamp = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.Insert(ctx, change); err != nil {
			return errFactory.Wrap(ErrRecordFailed, err)
		}
	}

	s.log.Debug().
		Str("id", change.ID).
		Str("kind", string(change.Kind)).
		Str("value", change.Value).
		Msg("Change recorded")

	return nil
}

func (s *service) Recent(ctx context.Context, limit int) ([]Change, error) {
	if limit <= 0 {
		return nil, errors.New().WithData(errors.ErrInvalidArgument, limit)
	}

	return s.repo.Recent(ctx, limit)
}

func (s *service) Close() error {
	errFactory := errors.New()

	if err := s.repo.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}
	return nil
}

func (*noopRecorder) Record(_ context.Context, _ *Change) error {
	return nil
}

func (*noopRecorder) Recent(_ context.Context, _ int) ([]Change, error) {
	return nil, nil
}

func (*noopRecorder) Close() error {
	return nil
}
