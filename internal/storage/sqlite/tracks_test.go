package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/yegors/vatmap/internal/model"
	"github.com/yegors/vatmap/pkg/logger"
)

func testStorage(t *testing.T, retention time.Duration) *TrackStorage {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	assert.Equal(t, err, nil)

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	assert.Equal(t, err, nil)
	t.Cleanup(func() { db.Close() })

	storage, err := NewTrackStorage(db, retention, log)
	assert.Equal(t, err, nil)
	return storage
}

func pilotSample(callsign string, logon, updated time.Time, alt int) *model.Pilot {
	return &model.Pilot{
		Callsign:    callsign,
		Position:    model.Point{Lat: 51.5, Lng: -0.4},
		Altitude:    alt,
		Groundspeed: 450,
		Heading:     270,
		LogonTime:   logon,
		LastUpdated: updated,
	}
}

func TestAppendAndGetTrack(t *testing.T) {
	s := testStorage(t, 24*time.Hour)
	logon := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)

	err := s.AppendPoints([]*model.Pilot{
		pilotSample("BAW123", logon, logon.Add(15*time.Second), 5000),
	})
	assert.Equal(t, err, nil)
	err = s.AppendPoints([]*model.Pilot{
		pilotSample("BAW123", logon, logon.Add(30*time.Second), 7000),
	})
	assert.Equal(t, err, nil)

	track, err := s.GetTrack("BAW123", logon)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(track), 2)
	assert.Equal(t, track[0].Altitude, 5000)
	assert.Equal(t, track[1].Altitude, 7000)
	assert.Equal(t, track[1].Timestamp.Equal(logon.Add(30*time.Second)), true)

	// A different flight under the same callsign has its own track
	track, err = s.GetTrack("BAW123", logon.Add(6*time.Hour))
	assert.Equal(t, err, nil)
	assert.Equal(t, len(track), 0)
}

func TestAppendSkipsStaleSamples(t *testing.T) {
	s := testStorage(t, 24*time.Hour)
	logon := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	sample := pilotSample("BAW123", logon, logon.Add(15*time.Second), 5000)

	assert.Equal(t, s.AppendPoints([]*model.Pilot{sample}), nil)
	// Same feed timestamp again: nothing new to record
	assert.Equal(t, s.AppendPoints([]*model.Pilot{sample}), nil)

	n, err := s.Count()
	assert.Equal(t, err, nil)
	assert.Equal(t, n, int64(1))
}

func TestCleanupExpiresOldPoints(t *testing.T) {
	s := testStorage(t, time.Hour)

	old := time.Now().Add(-2 * time.Hour).UTC()
	recent := time.Now().UTC()
	assert.Equal(t, s.AppendPoints([]*model.Pilot{pilotSample("OLD1", old, old, 1000)}), nil)
	assert.Equal(t, s.AppendPoints([]*model.Pilot{pilotSample("NEW1", recent, recent, 2000)}), nil)

	removed, err := s.Cleanup()
	assert.Equal(t, err, nil)
	assert.Equal(t, removed, int64(1))

	n, err := s.Count()
	assert.Equal(t, err, nil)
	assert.Equal(t, n, int64(1))
}
