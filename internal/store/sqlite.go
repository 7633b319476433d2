package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kra-data-tools/notice-tracker/internal/record"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS notices (
	position      INTEGER PRIMARY KEY AUTOINCREMENT,
	identity_key  TEXT NOT NULL UNIQUE,
	date          TEXT NOT NULL DEFAULT '',
	pin           TEXT NOT NULL DEFAULT '',
	taxpayer_name TEXT NOT NULL DEFAULT '',
	notice_title  TEXT NOT NULL DEFAULT '',
	total_tax     TEXT NOT NULL DEFAULT '',
	year          TEXT NOT NULL DEFAULT '',
	kra_station   TEXT NOT NULL DEFAULT '',
	officer_name  TEXT NOT NULL DEFAULT '',
	source_file   TEXT NOT NULL DEFAULT '',
	method        TEXT NOT NULL DEFAULT '',
	extracted_at  TEXT NOT NULL DEFAULT ''
);`

// SQLiteStore persists records in a single-file database. Every Put commits
// immediately, so Save is a no-op; the position column preserves insertion
// order across runs.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, storeError("open database", err)
	}
	// The merger is the single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, storeError("init schema", err)
	}
	logger.Info("store.sqlite.open", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (*record.ExtractionRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT date, pin, taxpayer_name, notice_title, total_tax, year,
		       kra_station, officer_name, source_file, method, extracted_at
		FROM notices WHERE identity_key = ?`, key)

	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storeError("get record", err)
	}
	return rec, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, rec *record.ExtractionRecord) error {
	values := rec.Values()
	extractedAt := ""
	if !rec.ExtractedAt.IsZero() {
		extractedAt = rec.ExtractedAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notices
			(identity_key, date, pin, taxpayer_name, notice_title, total_tax,
			 year, kra_station, officer_name, source_file, method, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity_key) DO UPDATE SET
			date = excluded.date,
			pin = excluded.pin,
			taxpayer_name = excluded.taxpayer_name,
			notice_title = excluded.notice_title,
			total_tax = excluded.total_tax,
			year = excluded.year,
			kra_station = excluded.kra_station,
			officer_name = excluded.officer_name,
			source_file = excluded.source_file,
			method = excluded.method,
			extracted_at = excluded.extracted_at`,
		key, values[0], values[1], values[2], values[3], values[4],
		values[5], values[6], values[7], rec.SourceFilename, rec.Method, extractedAt)
	if err != nil {
		return storeError("put record", err)
	}
	return nil
}

func (s *SQLiteStore) Records(ctx context.Context) ([]Stored, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT identity_key, date, pin, taxpayer_name, notice_title, total_tax,
		       year, kra_station, officer_name, source_file, method, extracted_at
		FROM notices ORDER BY position`)
	if err != nil {
		return nil, storeError("list records", err)
	}
	defer rows.Close()

	var out []Stored
	for rows.Next() {
		var key string
		rec, err := scanRecord(func(dest ...any) error {
			return rows.Scan(append([]any{&key}, dest...)...)
		})
		if err != nil {
			return nil, storeError("scan record", err)
		}
		out = append(out, Stored{Key: key, Record: rec})
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list records", err)
	}
	return out, nil
}

func (s *SQLiteStore) Save(context.Context) error { return nil }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func scanRecord(scan func(dest ...any) error) (*record.ExtractionRecord, error) {
	fields := make([]string, len(record.FieldOrder))
	var sourceFile, method, extractedAt string

	dest := make([]any, 0, len(fields)+3)
	for i := range fields {
		dest = append(dest, &fields[i])
	}
	dest = append(dest, &sourceFile, &method, &extractedAt)
	if err := scan(dest...); err != nil {
		return nil, err
	}

	rec := record.New(sourceFile)
	for i, name := range record.FieldOrder {
		if fields[i] == "" {
			continue
		}
		rec.Set(name, record.FieldValue{Raw: fields[i], Normalized: fields[i], Present: true, Parsed: true})
	}
	rec.Method = method
	if ts, err := time.Parse(time.RFC3339, extractedAt); err == nil {
		rec.ExtractedAt = ts
	}
	return rec, nil
}
