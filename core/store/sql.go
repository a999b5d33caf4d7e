package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/logger"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var schemas = map[string]string{
	"sqlite": `CREATE TABLE IF NOT EXISTS reports (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	request_id TEXT NOT NULL,
	source_url TEXT NOT NULL,
	file_name TEXT NOT NULL,
	format TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	size_bytes INTEGER NOT NULL,
	generated_at TEXT NOT NULL,
	download_url TEXT NOT NULL,
	content BLOB
)`,
	"postgres": `CREATE TABLE IF NOT EXISTS reports (
	seq BIGSERIAL PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	request_id TEXT NOT NULL,
	source_url TEXT NOT NULL,
	file_name TEXT NOT NULL,
	format TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	size_bytes BIGINT NOT NULL,
	generated_at TEXT NOT NULL,
	download_url TEXT NOT NULL,
	content BYTEA
)`,
}

var sqlitePragmas = []string{
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=10000",
	"PRAGMA synchronous=NORMAL",
}

const reportColumns = `id, request_id, source_url, file_name, format, mime_type, size_bytes, generated_at, download_url, content`

// SQL stores reports in a database/sql database.
type SQL struct {
	db      *sql.DB
	driver  string
	baseURL string
}

// OpenSQL opens the database, applies connection settings and creates the
// schema. driver is "sqlite" or "postgres".
func OpenSQL(driver, dsn, baseURL string) (*SQL, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		// one connection keeps pragmas and in-memory databases consistent
		db.SetMaxOpenConns(1)
		for _, p := range sqlitePragmas {
			if _, err := db.Exec(p); err != nil {
				db.Close()
				return nil, fmt.Errorf("setting pragma %q: %w", p, err)
			}
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s database: %w", driver, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Log.WithField("driver", driver).Debug("report store opened")
	return &SQL{db: db, driver: driver, baseURL: baseURL}, nil
}

// Close closes the underlying database.
func (s *SQL) Close() error {
	return s.db.Close()
}

// Save implements core.Store. Saving an existing id overwrites its row.
func (s *SQL) Save(ctx context.Context, report core.GeneratedReport) (core.GeneratedReport, error) {
	report = copyReport(report)
	report.DownloadURL = DownloadURL(s.baseURL, report.ID)

	q := `INSERT INTO reports (` + reportColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	request_id = excluded.request_id,
	source_url = excluded.source_url,
	file_name = excluded.file_name,
	format = excluded.format,
	mime_type = excluded.mime_type,
	size_bytes = excluded.size_bytes,
	generated_at = excluded.generated_at,
	download_url = excluded.download_url,
	content = excluded.content`

	_, err := s.db.ExecContext(ctx, s.rebind(q),
		report.ID,
		report.RequestID,
		report.SourceURL,
		report.FileName,
		string(report.Format),
		report.MIMEType,
		report.Size,
		report.GeneratedAt.UTC().Format(time.RFC3339Nano),
		report.DownloadURL,
		report.Content,
	)
	if err != nil {
		return core.GeneratedReport{}, fmt.Errorf("inserting report %s: %w", report.ID, err)
	}
	return report, nil
}

// FindByID implements core.Store.
func (s *SQL) FindByID(ctx context.Context, id string) (core.GeneratedReport, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+reportColumns+` FROM reports WHERE id = ?`), id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.GeneratedReport{}, core.ErrNotFound
	}
	if err != nil {
		return core.GeneratedReport{}, fmt.Errorf("reading report %s: %w", id, err)
	}
	return r, nil
}

// FindBySourceURL implements core.Store. Results are in save order.
func (s *SQL) FindBySourceURL(ctx context.Context, sourceURL string) ([]core.GeneratedReport, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT `+reportColumns+` FROM reports WHERE source_url = ? ORDER BY seq`), sourceURL)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var out []core.GeneratedReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete implements core.Store.
func (s *SQL) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM reports WHERE id = ?`), id); err != nil {
		return fmt.Errorf("deleting report %s: %w", id, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (core.GeneratedReport, error) {
	var (
		r           core.GeneratedReport
		format      string
		generatedAt string
	)
	err := sc.Scan(&r.ID, &r.RequestID, &r.SourceURL, &r.FileName, &format, &r.MIMEType,
		&r.Size, &generatedAt, &r.DownloadURL, &r.Content)
	if err != nil {
		return core.GeneratedReport{}, err
	}
	r.Format = core.OutputFormat(format)
	if r.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt); err != nil {
		return core.GeneratedReport{}, fmt.Errorf("parsing generated_at: %w", err)
	}
	return r, nil
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres.
func (s *SQL) rebind(q string) string {
	if s.driver != "postgres" {
		return q
	}
	var b strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
