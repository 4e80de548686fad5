package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/yegors/vatmap/internal/model"
	"github.com/yegors/vatmap/pkg/logger"
)

// TrackStorage handles storage of pilot track points. A track is keyed
// (callsign, logon_time) so a callsign reused across sessions never merges
// two flights.
type TrackStorage struct {
	db        *sql.DB
	retention time.Duration
	logger    *logger.Logger

	// lastSeen dedupes inserts: a pilot whose feed timestamp did not move
	// since the previous cycle produced no new sample
	lastSeen map[string]time.Time
}

// NewTrackStorage creates a new SQLite track storage
func NewTrackStorage(db *sql.DB, retention time.Duration, log *logger.Logger) (*TrackStorage, error) {
	storage := &TrackStorage{
		db:        db,
		retention: retention,
		logger:    log.Named("sqlite-tracks"),
		lastSeen:  make(map[string]time.Time),
	}
	if err := storage.initDB(); err != nil {
		return nil, err
	}
	return storage, nil
}

// initDB initializes the database tables
func (s *TrackStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS track_points (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			callsign TEXT NOT NULL,
			logon_time TIMESTAMP NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			lat REAL NOT NULL,
			lng REAL NOT NULL,
			altitude INTEGER NOT NULL,
			groundspeed INTEGER NOT NULL,
			heading INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create track_points table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_track_points_flight ON track_points(callsign, logon_time)`,
		`CREATE INDEX IF NOT EXISTS idx_track_points_timestamp ON track_points(timestamp)`,
	}
	for _, indexSQL := range indexes {
		if _, err := s.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create track index: %w", err)
		}
	}
	return nil
}

// AppendPoints stores the current position sample of every pilot in one
// transaction, skipping pilots whose feed timestamp has not advanced
func (s *TrackStorage) AppendPoints(pilots []*model.Pilot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO track_points
		(callsign, logon_time, timestamp, lat, lng, altitude, groundspeed, heading)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	fresh := make(map[string]time.Time, len(pilots))
	inserted := 0
	for _, p := range pilots {
		fresh[p.Callsign] = p.LastUpdated
		if prev, ok := s.lastSeen[p.Callsign]; ok && !p.LastUpdated.After(prev) {
			continue
		}
		_, err := stmt.Exec(
			p.Callsign,
			p.LogonTime.Format(time.RFC3339),
			p.LastUpdated.Format(time.RFC3339),
			p.Position.Lat,
			p.Position.Lng,
			p.Altitude,
			p.Groundspeed,
			p.Heading,
		)
		if err != nil {
			return fmt.Errorf("failed to insert track point: %w", err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit track points: %w", err)
	}

	s.lastSeen = fresh
	s.logger.Debug("track points stored",
		logger.Int("pilots", len(pilots)),
		logger.Int("inserted", inserted))
	return nil
}

// GetTrack returns the stored track of one flight in timestamp order
func (s *TrackStorage) GetTrack(callsign string, logonTime time.Time) ([]model.TrackPoint, error) {
	rows, err := s.db.Query(`
		SELECT timestamp, lat, lng, altitude, groundspeed, heading
		FROM track_points
		WHERE callsign = ? AND logon_time = ?
		ORDER BY timestamp ASC`,
		callsign, logonTime.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query track: %w", err)
	}
	defer rows.Close()

	var track []model.TrackPoint
	for rows.Next() {
		var (
			ts string
			pt model.TrackPoint
		)
		if err := rows.Scan(&ts, &pt.Position.Lat, &pt.Position.Lng,
			&pt.Altitude, &pt.Groundspeed, &pt.Heading); err != nil {
			return nil, fmt.Errorf("failed to scan track point: %w", err)
		}
		pt.Timestamp, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse track timestamp: %w", err)
		}
		track = append(track, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate track rows: %w", err)
	}
	return track, nil
}

// Cleanup deletes points older than the retention window and returns the
// number of rows removed
func (s *TrackStorage) Cleanup() (int64, error) {
	cutoff := time.Now().Add(-s.retention).Format(time.RFC3339)
	result, err := s.db.Exec(`DELETE FROM track_points WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired track points: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted rows: %w", err)
	}
	return n, nil
}

// Count returns the total number of stored track points
func (s *TrackStorage) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM track_points`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count track points: %w", err)
	}
	return n, nil
}
