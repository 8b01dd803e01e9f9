package runs

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrRunNotFound   = errors.New("run not found")
	ErrInvalidKind   = errors.New("kind must be index, feed, or article")
	ErrInvalidStatus = errors.New("status must be completed, partial, or failed")
)

const (
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// Store keeps the history of scrape runs in SQLite.
type Store struct {
	db *sql.DB
}

// Run is one recorded invocation of the scraper.
type Run struct {
	RunID        uuid.UUID       `json:"run_id"`
	Kind         string          `json:"kind"` // "index", "feed", "article"
	Status       string          `json:"status"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
	Options      json.RawMessage `json:"options,omitempty"`
	PagesScanned int             `json:"pages_scanned"`
	PagesFailed  int             `json:"pages_failed"`
	Summaries    int             `json:"summaries"`
	Contents     int             `json:"contents"`
	Failures     []FailureDetail `json:"failures,omitempty"`
	OutputPath   *string         `json:"output_path,omitempty"`
	LastError    *string         `json:"last_error,omitempty"`
}

// FailureDetail is a skipped page or article of a run.
type FailureDetail struct {
	Stage string `json:"stage"`
	Page  int    `json:"page,omitempty"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error"`
}

// RunFilter narrows ListRuns.
type RunFilter struct {
	Kind   *string
	Status *string
	Limit  int
	Offset int
}

// NewStore opens (or creates) the run history database at dsn.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		options TEXT,
		pages_scanned INTEGER DEFAULT 0,
		pages_failed INTEGER DEFAULT 0,
		summaries INTEGER DEFAULT 0,
		contents INTEGER DEFAULT 0,
		failures TEXT,
		output_path TEXT,
		last_error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs (started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRun inserts run, assigning a new ID when it has none.
func (s *Store) CreateRun(run *Run) error {
	if err := validateKind(run.Kind); err != nil {
		return err
	}
	if err := validateStatus(run.Status); err != nil {
		return err
	}
	if run.RunID == uuid.Nil {
		run.RunID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	var failuresJSON *string
	if len(run.Failures) > 0 {
		data, err := json.Marshal(run.Failures)
		if err != nil {
			return fmt.Errorf("failed to marshal failures: %w", err)
		}
		str := string(data)
		failuresJSON = &str
	}

	var optionsJSON *string
	if len(run.Options) > 0 {
		str := string(run.Options)
		optionsJSON = &str
	}

	query := `
		INSERT INTO runs (
			run_id, kind, status, started_at, finished_at, options,
			pages_scanned, pages_failed, summaries, contents,
			failures, output_path, last_error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		run.RunID.String(),
		run.Kind,
		run.Status,
		formatTime(&run.StartedAt),
		formatTime(run.FinishedAt),
		optionsJSON,
		run.PagesScanned,
		run.PagesFailed,
		run.Summaries,
		run.Contents,
		failuresJSON,
		run.OutputPath,
		run.LastError,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

const selectColumns = `
	SELECT run_id, kind, status, started_at, finished_at, options,
	       pages_scanned, pages_failed, summaries, contents,
	       failures, output_path, last_error
	FROM runs
`

type rowScanner interface {
	Scan(dest ...any) error
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(runID uuid.UUID) (*Run, error) {
	row := s.db.QueryRow(selectColumns+" WHERE run_id = ?", runID.String())

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns lists runs, most recent first.
func (s *Store) ListRuns(filter RunFilter) ([]Run, error) {
	query := selectColumns

	var whereClauses []string
	var args []any

	if filter.Kind != nil {
		whereClauses = append(whereClauses, "kind = ?")
		args = append(args, *filter.Kind)
	}
	if filter.Status != nil {
		whereClauses = append(whereClauses, "status = ?")
		args = append(args, *filter.Status)
	}

	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}

	query += " ORDER BY started_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// DeleteRun removes a run from the history.
func (s *Store) DeleteRun(runID uuid.UUID) error {
	result, err := s.db.Exec("DELETE FROM runs WHERE run_id = ?", runID.String())
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrRunNotFound
	}

	return nil
}

func scanRun(row rowScanner) (*Run, error) {
	var runIDStr, kind, status, startedAtStr string
	var finishedAtStr, options, failures, outputPath, lastError sql.NullString
	var pagesScanned, pagesFailed, summaries, contents int

	err := row.Scan(
		&runIDStr, &kind, &status, &startedAtStr, &finishedAtStr, &options,
		&pagesScanned, &pagesFailed, &summaries, &contents,
		&failures, &outputPath, &lastError,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	runID, err := uuid.Parse(runIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run ID: %w", err)
	}

	run := &Run{
		RunID:        runID,
		Kind:         kind,
		Status:       status,
		StartedAt:    parseTime(startedAtStr),
		PagesScanned: pagesScanned,
		PagesFailed:  pagesFailed,
		Summaries:    summaries,
		Contents:     contents,
	}

	if finishedAtStr.Valid {
		t := parseTime(finishedAtStr.String)
		run.FinishedAt = &t
	}
	if options.Valid {
		run.Options = json.RawMessage(options.String)
	}
	if outputPath.Valid {
		run.OutputPath = &outputPath.String
	}
	if lastError.Valid {
		run.LastError = &lastError.String
	}
	if failures.Valid {
		if err := json.Unmarshal([]byte(failures.String), &run.Failures); err != nil {
			return nil, fmt.Errorf("failed to unmarshal failures: %w", err)
		}
	}

	return run, nil
}

func validateKind(kind string) error {
	if kind != "index" && kind != "feed" && kind != "article" {
		return ErrInvalidKind
	}
	return nil
}

func validateStatus(status string) error {
	if status != StatusCompleted && status != StatusPartial && status != StatusFailed {
		return ErrInvalidStatus
	}
	return nil
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
