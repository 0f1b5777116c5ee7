package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledger (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	status TEXT NOT NULL,
	ticker TEXT NOT NULL,
	price REAL NOT NULL,
	timestamp DATETIME NOT NULL,
	position_type TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_ticker_time ON ledger(ticker, timestamp);
`

// SQLite is a database-backed ledger. The seq column preserves append
// order; rows are never updated or deleted.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) Append(r Record) error {
	_, err := j.db.Exec(`
		INSERT INTO ledger (status, ticker, price, timestamp, position_type)
		VALUES (?, ?, ?, ?, ?)`,
		r.Status, r.Ticker, r.Price, r.Time.UTC().Format(time.RFC3339), r.PositionType,
	)
	return err
}

func (j *SQLite) Records() ([]Record, error) {
	rows, err := j.db.Query(`
		SELECT status, ticker, price, timestamp, position_type
		FROM ledger
		ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec Record
			ts  string
		)
		if err := rows.Scan(&rec.Status, &rec.Ticker, &rec.Price, &ts, &rec.PositionType); err != nil {
			return nil, err
		}
		rec.Time, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
