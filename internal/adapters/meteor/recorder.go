package meteor

import (
	"context"
	"encoding/json"

	perr "gitplanet/internal/platform/errors"
	"gitplanet/internal/platform/store"
)

// Table is the ClickHouse event log
const Table = "planet_meteors"

const createTable = `CREATE TABLE IF NOT EXISTS ` + Table + ` (
	id        UUID,
	kind      LowCardinality(String),
	username  String,
	payload   String,
	at        DateTime64(3, 'UTC')
) ENGINE = MergeTree
ORDER BY (username, at)`

// Recorder appends meteors to the ClickHouse event log
type Recorder struct {
	ch store.Clickhouse
}

// NewRecorder wraps a ClickHouse seam, a nil seam records nothing
func NewRecorder(ch store.Clickhouse) *Recorder { return &Recorder{ch: ch} }

// EnsureTable creates the event log table when missing
func (r *Recorder) EnsureTable(ctx context.Context) error {
	if r.ch == nil {
		return nil
	}
	if err := r.ch.Exec(ctx, createTable); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "meteor create table")
	}
	return nil
}

// Publish implements Sink
func (r *Recorder) Publish(ctx context.Context, evs ...Event) error {
	if r.ch == nil || len(evs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(evs))
	for _, ev := range evs {
		payload := []byte("{}")
		if len(ev.Payload) > 0 {
			b, err := json.Marshal(ev.Payload)
			if err != nil {
				return perr.Wrapf(err, perr.ErrorCodeJSON, "meteor encode payload")
			}
			payload = b
		}
		rows = append(rows, []any{ev.ID, string(ev.Kind), ev.Username, string(payload), ev.At})
	}
	if err := r.ch.Insert(ctx, Table, rows); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "meteor insert")
	}
	return nil
}

// Recent reads the newest meteors for username, newest first
func (r *Recorder) Recent(ctx context.Context, username string, limit int) ([]Event, error) {
	if r.ch == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.ch.Query(ctx,
		`SELECT id, kind, username, payload, at FROM `+Table+` WHERE username = ? ORDER BY at DESC LIMIT ?`,
		username, limit)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDB, "meteor query")
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev      Event
			kind    string
			payload string
		)
		if err := rows.Scan(&ev.ID, &kind, &ev.Username, &payload, &ev.At); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeDB, "meteor scan")
		}
		ev.Kind = Kind(kind)
		if payload != "" && payload != "{}" {
			if err := json.Unmarshal([]byte(payload), &ev.Payload); err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "meteor decode payload")
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDB, "meteor rows")
	}
	return out, nil
}
