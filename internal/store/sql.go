package store

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/elonfeng/seedradar/pkg/trend"
)

// SQLStore implements History on SQLite or PostgreSQL.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore opens the database and creates the schema. backend is
// BackendSQLite (target is a file path) or BackendPostgres (target is a URL).
func NewSQLStore(backend, target string) (*SQLStore, error) {
	var (
		db     *sqlx.DB
		schema string
		err    error
	)
	switch backend {
	case BackendSQLite:
		db, err = sqlx.Open("sqlite", target+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
		schema = sqliteSchema
	case BackendPostgres:
		db, err = sqlx.Open("pgx", target)
		schema = postgresSchema
	default:
		return nil, fmt.Errorf("unknown sql backend %q", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", backend, err)
	}

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Append(ctx context.Context, records []trend.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO summary_records (title, seeders, leechers, peers, category, date, timestamp)
		VALUES (:title, :seeders, :leechers, :peers, :category, :date, :timestamp)
	`)
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		r.Timestamp = r.Timestamp.UTC()
		if _, err := stmt.ExecContext(ctx, r); err != nil {
			return fmt.Errorf("append record %q: %w", r.Title, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// Load reads every record in insertion order. Only rows that cannot be decoded
// are reported as ErrCorrupt; query and connection failures are returned as is.
func (s *SQLStore) Load(ctx context.Context) ([]trend.Record, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT title, seeders, leechers, peers, category, date, timestamp
		FROM summary_records ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}
	defer rows.Close()

	var records []trend.Record
	for rows.Next() {
		var r trend.Record
		if err := rows.StructScan(&r); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("select history: %w", ctxErr)
			}
			return nil, fmt.Errorf("%w: row %d: %v", ErrCorrupt, len(records)+1, err)
		}
		r.Timestamp = r.Timestamp.UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoHistory
	}
	return records, nil
}

func (s *SQLStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM summary_records"); err != nil {
		return fmt.Errorf("reset history: %w", err)
	}
	return nil
}
