package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/yegors/vatmap/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	assert.Equal(t, err, nil)
	return log
}

func TestProviderPreloadAndCache(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, r.URL.Path, "/metar")
		fmt.Fprint(w, `[{"icaoId": "EGLL", "wdir": 240, "wspd": 8, "rawOb": "EGLL 231020Z 24008KT CAVOK 18/11 Q1021"}]`)
	}))
	defer srv.Close()

	p := NewProvider(Config{
		APIBaseURL:     srv.URL,
		RequestTimeout: time.Second,
		CacheTTL:       time.Minute,
		NegativeTTL:    time.Minute,
		BatchSize:      50,
	}, testLogger(t))

	p.Preload(context.Background(), []string{"EGLL", "KJFK"})
	assert.Equal(t, requests, 1)

	wx := p.Get("EGLL")
	assert.NotEqual(t, wx, nil)
	assert.Equal(t, *wx.WindDirection, 240)

	// KJFK was requested but absent from the response: negative-cached
	assert.Equal(t, p.Get("KJFK"), nil)

	// Everything is fresh, so the next preload stays local
	p.Preload(context.Background(), []string{"EGLL", "KJFK"})
	assert.Equal(t, requests, 1)
}

func TestProviderBatching(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	p := NewProvider(Config{
		APIBaseURL:     srv.URL,
		RequestTimeout: time.Second,
		CacheTTL:       time.Minute,
		NegativeTTL:    time.Minute,
		BatchSize:      2,
	}, testLogger(t))

	p.Preload(context.Background(), []string{"AAAA", "BBBB", "CCCC", "DDDD", "EEEE"})
	assert.Equal(t, requests, 3)
}

func TestProviderFetchFailureLeavesCacheIntact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewProvider(Config{
		APIBaseURL:     srv.URL,
		RequestTimeout: time.Second,
		CacheTTL:       time.Minute,
		NegativeTTL:    time.Minute,
		BatchSize:      50,
	}, testLogger(t))

	p.Preload(context.Background(), []string{"EGLL"})
	assert.Equal(t, p.Get("EGLL"), nil)
}
