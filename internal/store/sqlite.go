package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"StockLens/internal/model"
)

// SQLiteBarCache persists bars to a SQLite database. Prices are stored as
// decimal text so they round-trip exactly.
type SQLiteBarCache struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteBarCache opens (or creates) the SQLite database and runs migrations.
func NewSQLiteBarCache(dbPath string, log zerolog.Logger) (*SQLiteBarCache, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &SQLiteBarCache{db: db, log: log.With().Str("component", "bar_cache").Logger()}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	c.log.Info().Str("path", dbPath).Msg("sqlite bar cache opened")
	return c, nil
}

func (c *SQLiteBarCache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_bars (
			code   TEXT NOT NULL,
			date   TEXT NOT NULL,
			open   TEXT NOT NULL,
			high   TEXT NOT NULL,
			low    TEXT NOT NULL,
			close  TEXT NOT NULL,
			volume INTEGER NOT NULL,
			PRIMARY KEY (code, date)
		)`,

		`CREATE TABLE IF NOT EXISTS bar_coverage (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			code       TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date   TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_coverage_code ON bar_coverage(code, start_date, end_date)`,
	}

	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Covered reports whether a single stored range spans [start, end].
func (c *SQLiteBarCache) Covered(ctx context.Context, code string, start, end time.Time) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx, `SELECT 1 FROM bar_coverage
		WHERE code = ? AND start_date <= ? AND end_date >= ? LIMIT 1`,
		code, start.Format(model.DateLayout), end.Format(model.DateLayout),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query coverage: %w", err)
	}
	return true, nil
}

// Bars returns the stored bars of code in [start, end], ascending.
func (c *SQLiteBarCache) Bars(ctx context.Context, code string, start, end time.Time) ([]model.OHLCV, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT date, open, high, low, close, volume
		FROM daily_bars WHERE code = ? AND date >= ? AND date <= ? ORDER BY date`,
		code, start.Format(model.DateLayout), end.Format(model.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.OHLCV
	for rows.Next() {
		var (
			date                   string
			open, high, low, close string
			b                      model.OHLCV
		)
		if err := rows.Scan(&date, &open, &high, &low, &close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		if b.Date, err = model.ParseDate(date); err != nil {
			return nil, fmt.Errorf("bar date %q: %w", date, err)
		}
		for _, f := range []struct {
			dst *decimal.Decimal
			src string
		}{{&b.Open, open}, {&b.High, high}, {&b.Low, low}, {&b.Close, close}} {
			if *f.dst, err = decimal.NewFromString(f.src); err != nil {
				return nil, fmt.Errorf("bar price %q: %w", f.src, err)
			}
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// Put stores bars and marks [start, end] as covered in one transaction.
func (c *SQLiteBarCache) Put(ctx context.Context, code string, start, end time.Time, bars []model.OHLCV) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO daily_bars
		(code, date, open, high, low, close, volume) VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, code, b.Date.Format(model.DateLayout),
			b.Open.String(), b.High.String(), b.Low.String(), b.Close.String(), b.Volume,
		); err != nil {
			return fmt.Errorf("insert bar %s: %w", b.Date.Format(model.DateLayout), err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO bar_coverage
		(code, start_date, end_date, fetched_at) VALUES (?,?,?,?)`,
		code, start.Format(model.DateLayout), end.Format(model.DateLayout), time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("insert coverage: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	c.log.Debug().Str("code", code).Int("bars", len(bars)).Msg("bars cached")
	return nil
}

func (c *SQLiteBarCache) Close() error {
	c.log.Info().Msg("closing sqlite bar cache")
	return c.db.Close()
}
