package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tradelab/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ RunStore = (*SQLiteStore)(nil)

// SQLiteStore implements RunStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at      TEXT    NOT NULL,
	strategy        TEXT    NOT NULL,
	tickers         TEXT    NOT NULL,
	start_date      TEXT    NOT NULL,
	end_date        TEXT    NOT NULL,
	initial_capital REAL    NOT NULL,
	final_value     REAL    NOT NULL,
	total_return    REAL    NOT NULL,
	cagr            REAL,
	sharpe_ratio    REAL,
	max_drawdown    REAL    NOT NULL,
	num_trades      INTEGER NOT NULL,
	win_rate        REAL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs (created_at);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, ensures the
// schema exists, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating runs schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts a run record and returns its assigned ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) (int64, error) {
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			created_at, strategy, tickers, start_date, end_date,
			initial_capital, final_value, total_return,
			cagr, sharpe_ratio, max_drawdown, num_trades, win_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		createdAt.Format(time.RFC3339Nano),
		run.Strategy,
		strings.Join(run.Tickers, ","),
		run.StartDate.Format("2006-01-02"),
		run.EndDate.Format("2006-01-02"),
		run.InitialCapital,
		run.FinalValue,
		run.TotalReturn,
		metricParam(run.CAGR),
		metricParam(run.SharpeRatio),
		run.MaxDrawdown,
		run.NumTrades,
		metricParam(run.WinRate),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	return res.LastInsertId()
}

// GetRun retrieves a single run by its ID. A missing ID returns sql.ErrNoRows.
func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, strategy, tickers, start_date, end_date,
		       initial_capital, final_value, total_return,
		       cagr, sharpe_ratio, max_drawdown, num_trades, win_rate
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first, up to limit.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, strategy, tickers, start_date, end_date,
		       initial_capital, final_value, total_return,
		       cagr, sharpe_ratio, max_drawdown, num_trades, win_rate
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run       Run
		createdAt string
		tickers   string
		startDate string
		endDate   string
		cagr      sql.NullFloat64
		sharpe    sql.NullFloat64
		winRate   sql.NullFloat64
	)
	err := sc.Scan(
		&run.ID, &createdAt, &run.Strategy, &tickers, &startDate, &endDate,
		&run.InitialCapital, &run.FinalValue, &run.TotalReturn,
		&cagr, &sharpe, &run.MaxDrawdown, &run.NumTrades, &winRate,
	)
	if err != nil {
		return nil, err
	}

	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing run created_at: %w", err)
	}
	if run.StartDate, err = time.Parse("2006-01-02", startDate); err != nil {
		return nil, fmt.Errorf("parsing run start_date: %w", err)
	}
	if run.EndDate, err = time.Parse("2006-01-02", endDate); err != nil {
		return nil, fmt.Errorf("parsing run end_date: %w", err)
	}
	if tickers != "" {
		run.Tickers = strings.Split(tickers, ",")
	}
	run.CAGR = metricFromNull(cagr)
	run.SharpeRatio = metricFromNull(sharpe)
	run.WinRate = metricFromNull(winRate)
	return &run, nil
}

// metricParam maps a not-computable metric to SQL NULL.
func metricParam(m domain.Metric) any {
	if !m.Valid {
		return nil
	}
	return m.Value
}

func metricFromNull(v sql.NullFloat64) domain.Metric {
	if !v.Valid {
		return domain.NotComputable
	}
	return domain.MetricOf(v.Float64)
}
