// Package decisionlog records one-ply decisions in a sqlite file for
// later analysis. It is optional: the service runs without it when no
// path is configured.
package decisionlog

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/centaurbot/centaur/oneply"
)

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at  TEXT NOT NULL,
	move        INTEGER NOT NULL,
	score       INTEGER NOT NULL,
	logit       INTEGER NOT NULL,
	reply_logit INTEGER NOT NULL,
	my_capture  INTEGER NOT NULL,
	opp_capture INTEGER NOT NULL,
	pool_size   INTEGER NOT NULL,
	version     INTEGER NOT NULL
);`

type Logger struct {
	db *sql.DB
}

func Open(path string) (*Logger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Logger{db: db}, nil
}

func (l *Logger) Record(d *oneply.Decision) error {
	_, err := l.db.Exec(
		`INSERT INTO decisions
		 (created_at, move, score, logit, reply_logit, my_capture, opp_capture, pool_size, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano),
		int(d.Move), d.Score, d.Logit, d.ReplyLogit,
		d.MyCapture, d.OppCapture, d.PoolSize, d.Version,
	)
	return err
}

// Count returns the number of recorded decisions.
func (l *Logger) Count() (int, error) {
	var n int
	err := l.db.QueryRow(`SELECT COUNT(*) FROM decisions`).Scan(&n)
	return n, err
}

func (l *Logger) Close() error {
	return l.db.Close()
}
