// Package journal writes a diagnostics-only append log of per-report
// counters to a local SQLite file, opened the same
// sql.Open("sqlite3", dbPath) way as any long-lived process would. It
// is never read back
// by the detection engine; it exists purely so an operator can inspect
// drop/opportunity/tick counts after the fact.
package journal

import (
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/sha3"
)

// Row is one report interval's worth of diagnostic counters.
type Row struct {
	ReportSeq        uint64
	WallMS           int64
	DroppedCount     uint64
	OpportunityCount uint64
	TickCount        uint64
	// BestProfitBps is the top opportunity's profit for the interval, if
	// any; formatted through decimal.Decimal on write so the text column
	// never carries float round-trip artifacts. Detection math itself
	// stays float64 — this conversion happens only at the journal
	// boundary.
	BestProfitBps float64
}

// Journal is a thin append-only writer over a SQLite file.
type Journal struct {
	db *sql.DB
}

// Open creates (if needed) the journal table at path and returns a
// Journal ready for Append calls.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: ping %s: %w", path, err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS report_rows (
	report_seq        INTEGER NOT NULL,
	wall_ms           INTEGER NOT NULL,
	dropped_count     INTEGER NOT NULL,
	opportunity_count INTEGER NOT NULL,
	tick_count        INTEGER NOT NULL,
	best_profit_bps   TEXT NOT NULL,
	checksum          TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Append writes one row. Errors are returned, never panicked — a
// journal write failure is diagnostic-layer noise, not a reason to
// bring down the detection loop, so callers typically log and continue.
func (j *Journal) Append(r Row) error {
	profit := decimal.NewFromFloat(r.BestProfitBps).StringFixed(4)
	checksum := rowChecksum(r, profit)
	_, err := j.db.Exec(
		`INSERT INTO report_rows (report_seq, wall_ms, dropped_count, opportunity_count, tick_count, best_profit_bps, checksum)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ReportSeq, r.WallMS, r.DroppedCount, r.OpportunityCount, r.TickCount, profit, checksum,
	)
	if err != nil {
		return fmt.Errorf("journal: append row: %w", err)
	}
	return nil
}

// rowChecksum hashes a row's column values so a row edited directly in
// the SQLite file (rather than through Append) is detectable on replay.
// Journal rows are diagnostics, not a security boundary, so a
// non-keyed digest is enough here.
func rowChecksum(r Row, profit string) string {
	h := sha3.New256()
	fmt.Fprintf(h, "%d|%d|%d|%d|%d|%s", r.ReportSeq, r.WallMS, r.DroppedCount, r.OpportunityCount, r.TickCount, profit)
	return hex.EncodeToString(h.Sum(nil))
}

// Count returns how many rows have been appended, for tests and
// diagnostics.
func (j *Journal) Count() (int, error) {
	var n int
	if err := j.db.QueryRow(`SELECT COUNT(*) FROM report_rows`).Scan(&n); err != nil {
		return 0, fmt.Errorf("journal: count rows: %w", err)
	}
	return n, nil
}

// VerifyChecksums re-derives each row's checksum from its stored columns
// and returns the report_seq of the first row whose stored checksum no
// longer matches, or -1 if every row is intact.
func (j *Journal) VerifyChecksums() (int64, error) {
	rows, err := j.db.Query(`SELECT report_seq, wall_ms, dropped_count, opportunity_count, tick_count, best_profit_bps, checksum FROM report_rows ORDER BY report_seq`)
	if err != nil {
		return 0, fmt.Errorf("journal: verify: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r Row
		var profit, stored string
		if err := rows.Scan(&r.ReportSeq, &r.WallMS, &r.DroppedCount, &r.OpportunityCount, &r.TickCount, &profit, &stored); err != nil {
			return 0, fmt.Errorf("journal: verify: scan row: %w", err)
		}
		if rowChecksum(r, profit) != stored {
			return int64(r.ReportSeq), nil
		}
	}
	return -1, rows.Err()
}

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}
