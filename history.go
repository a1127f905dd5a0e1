package grayarch

import (
	"crypto/sha1"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// History is a sqlite log of every conversion attempted.
type History struct {
	db *sql.DB
}

// Record is a single conversion in the History.
type Record struct {
	ID        int64
	Path      string
	Direction string
	Output    string
	Success   bool
	Message   string
	SHA1      string
	Time      time.Time
}

func NewHistory(file string) (*History, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS conversion (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL, direction TEXT NOT NULL, output TEXT, success INTEGER NOT NULL, message TEXT NOT NULL, sha1 TEXT, created INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE INDEX IF NOT EXISTS conversion_path ON conversion (path)"); err != nil {
		db.Close()
		return nil, err
	}

	return &History{
		db: db,
	}, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

func sha1File(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	s := sha1.New()
	if _, err := io.Copy(s, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%X", s.Sum(nil)), nil
}

// Add records the outcome of a finished conversion. The SHA-1 of the output
// is stored for successful conversions.
func (h *History) Add(s Status) (int64, error) {
	var output, sum sql.NullString
	if s.Err == nil && s.Output != "" {
		output.String, output.Valid = s.Output, true

		var err error
		if sum.String, err = sha1File(s.Output); err != nil {
			return 0, err
		}
		sum.Valid = true
	}

	result, err := h.db.Exec("INSERT INTO conversion (path, direction, output, success, message, sha1, created) VALUES (?, ?, ?, ?, ?, ?, ?)", s.Path, s.Direction.String(), output, s.Err == nil, s.Message, sum, time.Now().UnixNano())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func scanRecord(row interface{ Scan(...interface{}) error }) (*Record, error) {
	var r Record
	var output, sum sql.NullString
	var created int64
	if err := row.Scan(&r.ID, &r.Path, &r.Direction, &output, &r.Success, &r.Message, &sum, &created); err != nil {
		return nil, err
	}
	r.Output, r.SHA1 = output.String, sum.String
	r.Time = time.Unix(0, created)
	return &r, nil
}

// Last returns the most recent conversion of path, or nil if there is none.
func (h *History) Last(path string) (*Record, error) {
	r, err := scanRecord(h.db.QueryRow("SELECT id, path, direction, output, success, message, sha1, created FROM conversion WHERE path = ? ORDER BY id DESC LIMIT 1", path))
	switch err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return r, nil
	default:
		return nil, err
	}
}

// Recent returns up to limit conversions, newest first.
func (h *History) Recent(limit int) ([]Record, error) {
	rows, err := h.db.Query("SELECT id, path, direction, output, success, message, sha1, created FROM conversion ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}

	return records, rows.Err()
}
