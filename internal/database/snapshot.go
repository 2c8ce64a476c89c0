package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"uocsclub.net/runchallenge/internal/types"
)

// GetSnapshot returns the last stored snapshot. An empty database yields an
// empty snapshot with a zero FetchedAt.
func (d *DatabaseInst) GetSnapshot() (types.Snapshot, error) {
	d.dbLock.Lock()
	defer d.dbLock.Unlock()

	snapshot := types.Snapshot{
		Runs:         []types.RawRunRecord{},
		Participants: []types.RawParticipant{},
	}

	var fetchedAt int64
	err := d.db.QueryRow("SELECT fetched_at FROM snapshot_meta WHERE id = 1").Scan(&fetchedAt)
	switch {
	case err == sql.ErrNoRows:
		return snapshot, nil
	case err != nil:
		return snapshot, err
	}
	snapshot.FetchedAt = time.Unix(fetchedAt, 0).UTC()

	rows, err := d.db.Query("SELECT service_number, name, station FROM participant ORDER BY registration_order")
	if err != nil {
		return snapshot, err
	}
	defer rows.Close()

	for rows.Next() {
		p := types.RawParticipant{}
		if err := rows.Scan(&p.ServiceNumber, &p.Name, &p.Station); err != nil {
			return snapshot, err
		}
		snapshot.Participants = append(snapshot.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return snapshot, err
	}

	runRows, err := d.db.Query(`SELECT
			run_id,
			date,
			service_number,
			name,
			station,
			distance,
			status,
			rejection_reason
		FROM run ORDER BY row_id`)
	if err != nil {
		return snapshot, err
	}
	defer runRows.Close()

	for runRows.Next() {
		r := types.RawRunRecord{}
		var distance sql.NullString
		err := runRows.Scan(&r.Id, &r.Date, &r.ServiceNumber, &r.Name, &r.Station, &distance, &r.Status, &r.RejectionReason)
		if err != nil {
			return snapshot, err
		}
		if distance.Valid {
			r.Distance = distance.String
		}
		snapshot.Runs = append(snapshot.Runs, r)
	}

	return snapshot, runRows.Err()
}

// StoreSnapshot replaces the stored runs and roster in one transaction, so
// readers never see runs from one fetch and a roster from another.
func (d *DatabaseInst) StoreSnapshot(snapshot types.Snapshot) error {
	d.dbLock.Lock()
	defer d.dbLock.Unlock()

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}

	if err := replaceSnapshot(tx, snapshot); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func replaceSnapshot(tx *sql.Tx, snapshot types.Snapshot) error {
	for _, stmt := range []string{"DELETE FROM run;", "DELETE FROM participant;"} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	// rows are kept verbatim, duplicates and blanks included
	for i, p := range snapshot.Participants {
		_, err := tx.Exec("INSERT INTO participant (registration_order, service_number, name, station) VALUES (?, ?, ?, ?);",
			i, p.ServiceNumber, p.Name, p.Station)
		if err != nil {
			return fmt.Errorf("insert participant %d (%q): %w", i, p.ServiceNumber, err)
		}
	}

	for _, r := range snapshot.Runs {
		_, err := tx.Exec(`INSERT INTO run
			(run_id, date, service_number, name, station, distance, status, rejection_reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
			r.Id, r.Date, r.ServiceNumber, r.Name, r.Station, distanceText(r.Distance), r.Status, r.RejectionReason)
		if err != nil {
			return fmt.Errorf("insert run %q: %w", r.Id, err)
		}
	}

	fetchedAt := snapshot.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	_, err := tx.Exec("INSERT INTO snapshot_meta (id, fetched_at) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET fetched_at = excluded.fetched_at;",
		fetchedAt.Unix())
	return err
}

// distanceText keeps the sheet value as text. Coercion is the engine's job.
func distanceText(v any) sql.NullString {
	switch x := v.(type) {
	case nil:
		return sql.NullString{}
	case string:
		return sql.NullString{String: x, Valid: true}
	case json.Number:
		return sql.NullString{String: x.String(), Valid: true}
	case float64:
		return sql.NullString{String: strconv.FormatFloat(x, 'f', -1, 64), Valid: true}
	case int:
		return sql.NullString{String: strconv.Itoa(x), Valid: true}
	}
	return sql.NullString{String: fmt.Sprint(v), Valid: true}
}
