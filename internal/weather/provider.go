// Package weather fetches and caches METAR reports for controlled
// airports. Reports are refreshed lazily: the feed poller preloads the
// stations it is about to publish, and everything else ages out of the
// cache on its own.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yegors/vatmap/internal/model"
	"github.com/yegors/vatmap/pkg/logger"
)

// Config tunes the weather provider
type Config struct {
	// APIBaseURL is the aviationweather.gov data API root
	APIBaseURL string
	// RequestTimeout bounds a single batch fetch
	RequestTimeout time.Duration
	// CacheTTL is how long a fetched report stays fresh
	CacheTTL time.Duration
	// NegativeTTL is how long a station with no report is left alone
	// before being asked about again
	NegativeTTL time.Duration
	// BatchSize caps stations per upstream request
	BatchSize int
}

// DefaultConfig returns the provider defaults
func DefaultConfig() Config {
	return Config{
		APIBaseURL:     "https://aviationweather.gov/api/data",
		RequestTimeout: 10 * time.Second,
		CacheTTL:       10 * time.Minute,
		NegativeTTL:    30 * time.Minute,
		BatchSize:      50,
	}
}

type cacheEntry struct {
	wx      *model.WeatherInfo // nil for stations that publish no METAR
	expires time.Time
}

// Provider is a TTL-cached METAR source
type Provider struct {
	cfg        Config
	httpClient *http.Client
	logger     *logger.Logger

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// NewProvider creates a weather provider with an empty cache
func NewProvider(cfg Config, log *logger.Logger) *Provider {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	return &Provider{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: log.Named("weather"),
		cache:  make(map[string]cacheEntry),
	}
}

// Preload refreshes the cache for the given stations. Stations that are
// still fresh are skipped; the rest are fetched in batches. Failures are
// logged and left stale, the next cycle retries.
func (p *Provider) Preload(ctx context.Context, icaos []string) {
	now := time.Now()

	p.mu.RLock()
	var stale []string
	for _, icao := range icaos {
		entry, ok := p.cache[icao]
		if !ok || now.After(entry.expires) {
			stale = append(stale, icao)
		}
	}
	p.mu.RUnlock()

	for len(stale) > 0 {
		batch := stale
		if len(batch) > p.cfg.BatchSize {
			batch = batch[:p.cfg.BatchSize]
		}
		stale = stale[len(batch):]
		if err := p.fetchBatch(ctx, batch); err != nil {
			p.logger.Warn("metar fetch failed", logger.Error(err),
				logger.Int("stations", len(batch)))
			return
		}
	}
}

// Get returns the cached report for a station, or nil when the station has
// none. Get never hits the network.
func (p *Provider) Get(icao string) *model.WeatherInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cache[icao].wx
}

// fetchBatch pulls one batch of METARs and refreshes the cache. Requested
// stations missing from the response are negative-cached so fields without
// a METAR do not trigger a fetch every cycle.
func (p *Provider) fetchBatch(ctx context.Context, icaos []string) error {
	url := fmt.Sprintf("%s/metar?ids=%s&format=json",
		p.cfg.APIBaseURL, strings.Join(icaos, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var reports []metarReport
	if err := json.Unmarshal(body, &reports); err != nil {
		return fmt.Errorf("failed to parse metar JSON: %w", err)
	}

	now := time.Now()
	p.mu.Lock()
	defer p.mu.Unlock()
	seen := make(map[string]struct{}, len(reports))
	for i := range reports {
		r := &reports[i]
		if r.ICAOID == "" {
			continue
		}
		seen[r.ICAOID] = struct{}{}
		p.cache[r.ICAOID] = cacheEntry{
			wx:      r.convert(),
			expires: now.Add(p.cfg.CacheTTL),
		}
	}
	for _, icao := range icaos {
		if _, ok := seen[icao]; !ok {
			p.cache[icao] = cacheEntry{expires: now.Add(p.cfg.NegativeTTL)}
		}
	}

	p.logger.Debug("metar batch refreshed",
		logger.Int("requested", len(icaos)),
		logger.Int("received", len(reports)))
	return nil
}
