package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/ampurr/internal/errors"
	"codeberg.org/mutker/ampurr/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

type sqliteRepository struct {
	db  *sql.DB
	log logger.Logger
	mu  sync.Mutex
}

func NewRepository(cfg Config, log logger.Logger) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.DBPath,
			Error: err.Error(),
		})
	}

	dsn := cfg.DBPath + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)

	if err := ValidateAndUpdateSchema(db, cfg.DBPath, log); err != nil {
		db.Close()
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "schema_version",
			Error: err.Error(),
		})
	}

	log.Debug().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Msg("History repository initialized")

	return &sqliteRepository{
		db:  db,
		log: log,
	}, nil
}

func (r *sqliteRepository) Insert(ctx context.Context, change *Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, insertChangeSQL,
		change.ID,
		change.Timestamp.Unix(),
		string(change.Kind),
		change.Value,
		string(change.Source),
		boolToInt(change.Persisted),
	)
	if err != nil {
		return errors.New().Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Recent(ctx context.Context, limit int) ([]Change, error) {
	errFactory := errors.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx, recentChangesSQL, limit)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var changes []Change
	for rows.Next() {
		var (
			c         Change
			ts        int64
			kind      string
			source    string
			persisted int
		)
		if err := rows.Scan(&c.ID, &ts, &kind, &c.Value, &source, &persisted); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		c.Timestamp = time.Unix(ts, 0).UTC()
		c.Kind = Kind(kind)
		c.Source = Source(source)
		c.Persisted = persisted == 1
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	return changes, nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Checkpoint WAL and cleanup on close
	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		r.log.Debug().Err(err).Msg("Failed to checkpoint WAL")
	}

	if err := r.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	return nil
}
