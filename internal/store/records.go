package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UpsertActivityRecord inserts or replaces one raw payload variant.
func (s *Store) UpsertActivityRecord(r *ActivityRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO activity_records (activity_id, endpoint_name, raw_json, synced_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (activity_id, endpoint_name)
		DO UPDATE SET raw_json = excluded.raw_json, synced_at = excluded.synced_at`,
		r.ActivityID, r.EndpointName, string(r.RawJSON), r.SyncedAt.Format(time.RFC3339))
	return err
}

// GetActivityRecord retrieves one payload variant for an activity.
func (s *Store) GetActivityRecord(activityID int64, endpointName string) (*ActivityRecord, error) {
	row := s.db.QueryRow(`
		SELECT activity_id, endpoint_name, raw_json, synced_at
		FROM activity_records
		WHERE activity_id = ? AND endpoint_name = ?`,
		activityID, endpointName)

	r, err := scanActivityRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return r, err
}

// GetActivityRecords retrieves all payload variants for an activity.
func (s *Store) GetActivityRecords(activityID int64) ([]ActivityRecord, error) {
	rows, err := s.db.Query(`
		SELECT activity_id, endpoint_name, raw_json, synced_at
		FROM activity_records
		WHERE activity_id = ?
		ORDER BY endpoint_name`,
		activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActivityRecords(rows)
}

// ListRecordsByEndpoint retrieves every record holding the given payload
// variant, across all activities.
func (s *Store) ListRecordsByEndpoint(endpointName string) ([]ActivityRecord, error) {
	rows, err := s.db.Query(`
		SELECT activity_id, endpoint_name, raw_json, synced_at
		FROM activity_records
		WHERE endpoint_name = ?
		ORDER BY activity_id`,
		endpointName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActivityRecords(rows)
}

// UpdateActivityRecordJSON replaces the stored document for one variant.
// Returns ErrRecordNotFound if the record doesn't exist.
func (s *Store) UpdateActivityRecordJSON(activityID int64, endpointName string, rawJSON []byte) error {
	result, err := s.db.Exec(`
		UPDATE activity_records SET raw_json = ?
		WHERE activity_id = ? AND endpoint_name = ?`,
		string(rawJSON), activityID, endpointName)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// DeleteActivityRecords removes every payload variant for an activity and
// returns the number of rows removed.
func (s *Store) DeleteActivityRecords(activityID int64) (int, error) {
	result, err := s.db.Exec(`DELETE FROM activity_records WHERE activity_id = ?`, activityID)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// CountDetailRecords counts non-summary payload variants per activity for the
// given ids. Activities with no detail records are absent from the map.
func (s *Store) CountDetailRecords(activityIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(activityIDs))
	if len(activityIDs) == 0 {
		return counts, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(activityIDs)), ",")
	args := make([]any, 0, len(activityIDs))
	for _, id := range activityIDs {
		args = append(args, id)
	}

	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT activity_id, COUNT(*)
		FROM activity_records
		WHERE endpoint_name != ? AND activity_id IN (%s)
		GROUP BY activity_id`, placeholders),
		append([]any{EndpointSummary}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivityRecord(row rowScanner) (*ActivityRecord, error) {
	var r ActivityRecord
	var rawJSON, syncedAt string
	if err := row.Scan(&r.ActivityID, &r.EndpointName, &rawJSON, &syncedAt); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, syncedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing synced_at %q: %w", syncedAt, err)
	}
	r.RawJSON = []byte(rawJSON)
	r.SyncedAt = t
	return &r, nil
}

func collectActivityRecords(rows *sql.Rows) ([]ActivityRecord, error) {
	var records []ActivityRecord
	for rows.Next() {
		r, err := scanActivityRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}
