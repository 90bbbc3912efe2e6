package history

import (
	"context"
	"time"
)

// Recorder journals applied settings.
type Recorder interface {
	Record(ctx context.Context, change *Change) error
	Recent(ctx context.Context, limit int) ([]Change, error)
	Close() error
}

// Repository is the storage behind a Recorder.
type Repository interface {
	Insert(ctx context.Context, change *Change) error
	Recent(ctx context.Context, limit int) ([]Change, error)
	Close() error
}

// Kind is the setting a change applies to.
type Kind string

const (
	KindChargeLimit Kind = "charge_limit"
	KindGovernor    Kind = "governor"
)

// Source is the invocation path that applied a change.
type Source string

const (
	SourceCLI  Source = "cli"
	SourceBoot Source = "boot"
)

// Change is one applied setting.
type Change struct {
	ID        string
	Timestamp time.Time
	Kind      Kind
	Value     string
	Source    Source
	// Persisted is set when the value was also saved for the next boot.
	Persisted bool
}
