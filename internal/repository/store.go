package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/mgaillard/scandoc/constants"
	"github.com/mgaillard/scandoc/internal/entity"
)

const schema = `
CREATE TABLE IF NOT EXISTS extractions (
	id            TEXT PRIMARY KEY,
	file_name     TEXT NOT NULL,
	source_path   TEXT NOT NULL,
	format        TEXT NOT NULL,
	status        TEXT NOT NULL,
	title         TEXT,
	reference     TEXT,
	description   TEXT,
	price         TEXT,
	quantity      TEXT,
	notes         TEXT,
	confidence    INTEGER NOT NULL,
	processing_ms INTEGER NOT NULL,
	message       TEXT,
	created_at    TIMESTAMP NOT NULL
)`

// Store persists extraction rows over database/sql. The DSN picks the
// backend: postgres:// URLs use the pgx stdlib driver, anything else is
// treated as a sqlite path.
type Store struct {
	db       *sql.DB
	postgres bool
	logger   *slog.Logger
}

// Open connects, pings, and ensures the schema exists.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver := "sqlite"
	postgres := strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
	if postgres {
		driver = "pgx"
	}

	logger.Info("opening extraction store", "driver", driver)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}

	s := &Store{db: db, postgres: postgres, logger: logger}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// rebind rewrites ? placeholders to $N for the postgres dialect.
func (s *Store) rebind(q string) string {
	if !s.postgres {
		return q
	}
	var sb strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Save inserts one extraction row.
func (s *Store) Save(ctx context.Context, e *entity.Extraction) error {
	q := s.rebind(`INSERT INTO extractions
		(id, file_name, source_path, format, status, title, reference,
		 description, price, quantity, notes, confidence, processing_ms,
		 message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, q,
		e.ID.String(), e.FileName, e.SourcePath, e.Format, string(e.Status),
		e.Title, e.Reference, e.Description, e.Price, e.Quantity, e.Notes,
		e.Confidence, e.ProcessingMs, e.Message, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save extraction: %w", err)
	}
	s.logger.Debug("extraction saved", "id", e.ID, "file", e.FileName)
	return nil
}

// ListRecent returns the newest rows first, capped at limit. A limit of
// zero or less returns every row.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]entity.Extraction, error) {
	q := `SELECT id, file_name, source_path, format, status, title,
		reference, description, price, quantity, notes, confidence,
		processing_ms, message, created_at
		FROM extractions ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		q = s.rebind(q + " LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list extractions: %w", err)
	}
	defer rows.Close()

	var out []entity.Extraction
	for rows.Next() {
		var e entity.Extraction
		var id, status string
		if err := rows.Scan(&id, &e.FileName, &e.SourcePath, &e.Format, &status,
			&e.Title, &e.Reference, &e.Description, &e.Price, &e.Quantity,
			&e.Notes, &e.Confidence, &e.ProcessingMs, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan extraction: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse extraction id: %w", err)
		}
		e.ID = parsed
		e.Status = constants.JobStatus(status)
		out = append(out, e)
	}
	return out, rows.Err()
}
