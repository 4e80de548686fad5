// Package relay is the distribution core: it owns the authoritative
// snapshot pair, diffs consecutive snapshots once per refresh and fans the
// result out to every live subscription session and named-query
// registration.
package relay

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yegors/vatmap/internal/diff"
	"github.com/yegors/vatmap/internal/filter"
	"github.com/yegors/vatmap/internal/model"
	"github.com/yegors/vatmap/pkg/logger"
)

// ErrDuplicateSubscription is returned when a session registers a named
// query under an id it already uses
var ErrDuplicateSubscription = errors.New("subscription id already registered")

// ErrNotFound is returned by unary lookups for unknown keys
var ErrNotFound = errors.New("not found")

// Options tunes the relay
type Options struct {
	// Workers bounds the number of sessions refreshed concurrently per
	// cycle
	Workers int
	// SessionQueue is the outbound frame buffer per session
	SessionQueue int
}

// Relay is the distribution multiplexer
type Relay struct {
	logger   *logger.Logger
	opts     Options
	registry *Registry

	current atomic.Pointer[model.Snapshot]
	prev    *model.Snapshot // touched only by Ingest

	mu       sync.RWMutex
	sessions map[string]*Session
}

// New creates a relay with no snapshot and no sessions
func New(opts Options, log *logger.Logger) *Relay {
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	if opts.SessionQueue <= 0 {
		opts.SessionQueue = 256
	}
	return &Relay{
		logger:   log.Named("relay"),
		opts:     opts,
		registry: NewRegistry(log),
		sessions: make(map[string]*Session),
	}
}

// Registry exposes the named-query registry
func (r *Relay) Registry() *Registry { return r.registry }

// Ingest runs one refresh cycle against a freshly assembled snapshot:
// diff once, fan out to every session, notify named-query subscribers,
// then store the snapshot as the baseline for the next cycle. Callers must
// invoke Ingest sequentially (the feed poller is a single goroutine); one
// cycle fully completes before the next begins, so every session observes
// the same diff sequence.
func (r *Relay) Ingest(snap *model.Snapshot) {
	d := diff.Compute(r.prev, snap)
	r.current.Store(snap)

	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	// Per-session work is independent; sessions never read each other's
	// state, so the fan-out parallelizes freely within the cycle.
	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for _, s := range sessions {
		s := s
		g.Go(func() error {
			s.refresh(snap, d)
			return nil
		})
	}
	_ = g.Wait()

	r.registry.Notify(d.Transitions)
	r.prev = snap

	r.logger.Debug("refresh cycle complete",
		logger.Int("sessions", len(sessions)),
		logger.Int("pilots_set", len(d.Pilots.Set)),
		logger.Int("pilots_delete", len(d.Pilots.Delete)),
		logger.Int("airports_set", len(d.Airports.Set)),
		logger.Int("airports_delete", len(d.Airports.Delete)),
		logger.Int("firs_set", len(d.FIRs.Set)),
		logger.Int("firs_delete", len(d.FIRs.Delete)),
		logger.Int("transitions", len(d.Transitions)))
}

// NewSession registers a fresh subscription session. If a snapshot is
// already loaded the session is bootstrapped immediately with a full SET
// against its (empty) prior view instead of waiting for the next cycle.
func (r *Relay) NewSession() *Session {
	s := newSession(uuid.NewString(), r.opts.SessionQueue, r.registry, r.logger)
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()

	if snap := r.current.Load(); snap != nil {
		s.refresh(snap, &diff.Result{})
	}
	r.logger.Debug("session opened", logger.String("session_id", s.ID()))
	return s
}

// CloseSession tears a session down as a single cleanup unit: it leaves
// the fan-out set, all of its named-query registrations are swept, and its
// outbound stream is closed
func (r *Relay) CloseSession(s *Session) {
	r.mu.Lock()
	delete(r.sessions, s.ID())
	r.mu.Unlock()
	r.registry.removeSession(s.ID())
	s.close()
	r.logger.Debug("session closed", logger.String("session_id", s.ID()))
}

// SessionCount returns the number of live sessions
func (r *Relay) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot returns the current snapshot, or nil before the first feed
// cycle. The returned snapshot is immutable.
func (r *Relay) Snapshot() *model.Snapshot {
	return r.current.Load()
}

// PilotByCallsign looks a pilot up in the current snapshot
func (r *Relay) PilotByCallsign(callsign string) (*model.Pilot, error) {
	snap := r.current.Load()
	if snap == nil {
		return nil, ErrNotFound
	}
	p, ok := snap.Pilots[callsign]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// AirportByCode looks an airport up by ICAO code, falling back to an IATA
// scan
func (r *Relay) AirportByCode(code string) (*model.Airport, error) {
	snap := r.current.Load()
	if snap == nil {
		return nil, ErrNotFound
	}
	if a, ok := snap.Airports[code]; ok {
		return a, nil
	}
	for _, a := range snap.Airports {
		if a.IATA != "" && a.IATA == code {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

// PilotsByQuery runs a query once against the current snapshot. An empty
// query returns every pilot.
func (r *Relay) PilotsByQuery(query string) ([]*model.Pilot, error) {
	snap := r.current.Load()
	if snap == nil {
		return nil, nil
	}
	var flt *filter.Filter
	if query != "" {
		var err error
		flt, err = filter.Compile(query)
		if err != nil {
			return nil, err
		}
	}
	pilots := make([]*model.Pilot, 0, len(snap.Pilots))
	for _, p := range snap.Pilots {
		if flt == nil || flt.Match(p) {
			pilots = append(pilots, p)
		}
	}
	return pilots, nil
}
