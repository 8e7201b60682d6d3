package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"

	"github.com/bnema/vidpipe/internal/adapter/storage/sqlite/sqlitedb"
	"github.com/bnema/vidpipe/internal/domain"
	"github.com/bnema/vidpipe/internal/port"
)

//go:embed migrations/*.sql
var migrations embed.FS

const dbFile = "vidpipe.db"

type Store struct {
	db      *sql.DB
	queries *sqlitedb.Queries
}

var hookOnce sync.Once

func registerHook() {
	hookOnce.Do(func() {
		sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, dsn string) error {
			pragmas := []string{
				"PRAGMA journal_mode = WAL",
				"PRAGMA busy_timeout = 5000",
				"PRAGMA synchronous = NORMAL",
				"PRAGMA cache_size = -8000", // 8MB
			}
			for _, p := range pragmas {
				if _, err := conn.ExecContext(context.Background(), p, nil); err != nil {
					return fmt.Errorf("execute %s: %w", p, err)
				}
			}
			return nil
		})
	})
}

func NewStore(dataDir string) (*Store, error) {
	registerHook()

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFile))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One writer at a time; claims rely on it.
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		db:      db,
		queries: sqlitedb.New(db),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(id string) (*domain.Job, error) {
	row, err := s.queries.GetJob(context.Background(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return jobFromRow(row), nil
}

// List returns every job, newest first.
func (s *Store) List() ([]*domain.Job, error) {
	rows, err := s.queries.ListJobs(context.Background())
	if err != nil {
		return nil, err
	}
	jobs := make([]*domain.Job, len(rows))
	for i, row := range rows {
		jobs[i] = jobFromRow(row)
	}
	return jobs, nil
}

// UpdateProgress records p on a running job. Updates for jobs that are no
// longer running are dropped.
func (s *Store) UpdateProgress(id string, p domain.Progress) error {
	_, err := s.queries.UpdateJobProgress(context.Background(), sqlitedb.UpdateJobProgressParams{
		Percent:       int64(p.Percent),
		Indeterminate: p.Indeterminate,
		Artifact:      p.Artifact,
		ID:            id,
	})
	return err
}

func jobFromRow(row sqlitedb.Job) *domain.Job {
	return &domain.Job{
		ID:            row.ID,
		Kind:          domain.JobKind(row.Kind),
		Params:        json.RawMessage(row.Params),
		Status:        domain.JobStatus(row.Status),
		Percent:       int(row.Percent),
		Indeterminate: row.Indeterminate,
		Artifact:      row.Artifact,
		Message:       row.Message,
		ErrorMessage:  row.ErrorMessage,
		CreatedAt:     row.CreatedAt,
		StartedAt:     row.StartedAt,
		CompletedAt:   row.CompletedAt,
	}
}

var _ port.JobStore = (*Store)(nil)
