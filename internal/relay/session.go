package relay

import (
	"fmt"
	"sync"

	"github.com/yegors/vatmap/internal/diff"
	"github.com/yegors/vatmap/internal/filter"
	"github.com/yegors/vatmap/internal/model"
	"github.com/yegors/vatmap/pkg/logger"
)

// MinVisibleZoom is the zoom level below which the map may wrap around on
// screen, so geographic clipping is disabled and the whole world is sent
const MinVisibleZoom = 3.0

// Session is the per-connection subscription state: the active viewport,
// filter, weather toggle and named-query ids, plus the record of what has
// already been sent so removals can be delivered precisely. All command
// methods are safe for concurrent use, but one connection is expected to
// issue them from a single reader goroutine in arrival order.
type Session struct {
	id       string
	registry *Registry
	logger   *logger.Logger

	mu           sync.Mutex
	bounds       *model.Bounds
	flt          *filter.Filter
	showWX       bool
	subs         map[string]struct{}
	resync       bool
	sentPilots   map[string]struct{}
	sentAirports map[string]struct{}
	sentFIRs     map[string]struct{}

	outMu   sync.Mutex
	out     chan model.ServerMessage
	closed  bool
	dropped int
}

func newSession(id string, queueSize int, registry *Registry, log *logger.Logger) *Session {
	return &Session{
		id:           id,
		registry:     registry,
		logger:       log.Named("session").With(logger.String("session_id", id)),
		subs:         make(map[string]struct{}),
		resync:       true,
		sentPilots:   make(map[string]struct{}),
		sentAirports: make(map[string]struct{}),
		sentFIRs:     make(map[string]struct{}),
		out:          make(chan model.ServerMessage, queueSize),
	}
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// Out is the stream of outbound frames for this session's connection. The
// channel is closed when the session is torn down.
func (s *Session) Out() <-chan model.ServerMessage { return s.out }

// SetBounds replaces the active viewport; nil clears it. The next refresh
// resynchronizes the view against the full snapshot.
func (s *Session) SetBounds(b *model.Bounds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bounds = b
	s.resync = true
}

// SetFilter recompiles and replaces the active filter; empty text clears
// it. On compile failure the previous filter stays active and the error is
// returned to the caller.
func (s *Session) SetFilter(query string) error {
	var flt *filter.Filter
	if query != "" {
		var err error
		flt, err = filter.Compile(query)
		if err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flt = flt
	s.resync = true
	return nil
}

// SetShowWeather toggles whether airport weather is included in this
// session's updates
func (s *Session) SetShowWeather(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showWX = v
	s.resync = true
}

// Subscribe registers a named query under the given id. The id is scoped
// to this session; registering it twice is an error, as is a query that
// fails to compile.
func (s *Session) Subscribe(id, query string) error {
	flt, err := filter.Compile(query)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateSubscription, id)
	}
	if err := s.registry.register(s, id, flt); err != nil {
		return err
	}
	s.subs[id] = struct{}{}
	return nil
}

// Unsubscribe removes a named query registration. Removing an unknown id
// is a no-op.
func (s *Session) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
	s.registry.unregister(s.id, id)
}

// refresh is called by the relay once per cycle. A session that executed a
// command since the previous cycle rebuilds its whole view from the
// snapshot; otherwise the global diff batches are narrowed to the
// session's viewport and filter.
func (s *Session) refresh(snap *model.Snapshot, d *diff.Result) {
	s.mu.Lock()
	var updates []model.Update
	if s.resync {
		updates = s.rebuild(snap)
		s.resync = false
	} else {
		updates = s.apply(d)
	}
	s.mu.Unlock()

	for i := range updates {
		u := updates[i]
		s.deliver(model.ServerMessage{Update: &u})
	}
}

// rebuild recomputes the full visible set from the snapshot, emitting SETs
// for everything visible and DELETEs for entities that left the view
func (s *Session) rebuild(snap *model.Snapshot) []model.Update {
	var pilotSet []*model.Pilot
	freshPilots := make(map[string]struct{}, len(snap.Pilots))
	for callsign, p := range snap.Pilots {
		if s.pilotVisible(p) {
			pilotSet = append(pilotSet, p)
			freshPilots[callsign] = struct{}{}
		}
	}
	var pilotDel []*model.Pilot
	for callsign := range s.sentPilots {
		if _, ok := freshPilots[callsign]; !ok {
			pilotDel = append(pilotDel, &model.Pilot{Callsign: callsign})
		}
	}
	s.sentPilots = freshPilots

	var arptSet []*model.Airport
	freshAirports := make(map[string]struct{}, len(snap.Airports))
	for icao, a := range snap.Airports {
		if s.airportVisible(a) {
			arptSet = append(arptSet, s.clipAirport(a))
			freshAirports[icao] = struct{}{}
		}
	}
	var arptDel []*model.Airport
	for icao := range s.sentAirports {
		if _, ok := freshAirports[icao]; !ok {
			arptDel = append(arptDel, &model.Airport{ICAO: icao})
		}
	}
	s.sentAirports = freshAirports

	var firSet []*model.FIR
	freshFIRs := make(map[string]struct{}, len(snap.FIRs))
	for icao, f := range snap.FIRs {
		firSet = append(firSet, f)
		freshFIRs[icao] = struct{}{}
	}
	var firDel []*model.FIR
	for icao := range s.sentFIRs {
		if _, ok := freshFIRs[icao]; !ok {
			firDel = append(firDel, &model.FIR{ICAO: icao})
		}
	}
	s.sentFIRs = freshFIRs

	return buildUpdates(pilotSet, pilotDel, arptSet, arptDel, firSet, firDel)
}

// apply narrows one global diff to this session's view, tracking set
// membership so out-of-view transitions become DELETEs and deletions of
// never-sent entities are suppressed
func (s *Session) apply(d *diff.Result) []model.Update {
	var pilotSet, pilotDel []*model.Pilot
	for _, p := range d.Pilots.Set {
		if s.pilotVisible(p) {
			s.sentPilots[p.Callsign] = struct{}{}
			pilotSet = append(pilotSet, p)
		} else if _, ok := s.sentPilots[p.Callsign]; ok {
			delete(s.sentPilots, p.Callsign)
			pilotDel = append(pilotDel, p.Ref())
		}
	}
	for _, p := range d.Pilots.Delete {
		if _, ok := s.sentPilots[p.Callsign]; ok {
			delete(s.sentPilots, p.Callsign)
			pilotDel = append(pilotDel, p)
		}
	}

	var arptSet, arptDel []*model.Airport
	for _, a := range d.Airports.Set {
		if s.airportVisible(a) {
			s.sentAirports[a.ICAO] = struct{}{}
			arptSet = append(arptSet, s.clipAirport(a))
		} else if _, ok := s.sentAirports[a.ICAO]; ok {
			delete(s.sentAirports, a.ICAO)
			arptDel = append(arptDel, a.Ref())
		}
	}
	for _, a := range d.Airports.Delete {
		if _, ok := s.sentAirports[a.ICAO]; ok {
			delete(s.sentAirports, a.ICAO)
			arptDel = append(arptDel, a)
		}
	}

	var firSet, firDel []*model.FIR
	for _, f := range d.FIRs.Set {
		s.sentFIRs[f.ICAO] = struct{}{}
		firSet = append(firSet, f)
	}
	for _, f := range d.FIRs.Delete {
		if _, ok := s.sentFIRs[f.ICAO]; ok {
			delete(s.sentFIRs, f.ICAO)
			firDel = append(firDel, f)
		}
	}

	return buildUpdates(pilotSet, pilotDel, arptSet, arptDel, firSet, firDel)
}

// pilotVisible applies viewport then filter. Low zoom disables clipping
// because the rendered map may wrap.
func (s *Session) pilotVisible(p *model.Pilot) bool {
	if s.bounds != nil && s.bounds.Zoom >= MinVisibleZoom && !s.bounds.Contains(p.Position) {
		return false
	}
	return s.flt == nil || s.flt.Match(p)
}

// airportVisible applies the viewport; uncontrolled airports are only
// relayed for their weather, so they are gated on the weather toggle
func (s *Session) airportVisible(a *model.Airport) bool {
	if s.bounds != nil && s.bounds.Zoom >= MinVisibleZoom && !s.bounds.Contains(a.Position) {
		return false
	}
	return !a.Controllers.Empty() || (s.showWX && a.WX != nil)
}

func (s *Session) clipAirport(a *model.Airport) *model.Airport {
	if s.showWX {
		return a
	}
	return a.StripWeather()
}

// deliver queues one frame without ever blocking the refresh cycle. A full
// queue means the consumer is too slow; the frame is dropped and the
// transport is expected to resync on reconnect.
func (s *Session) deliver(msg model.ServerMessage) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.out <- msg:
	default:
		s.dropped++
		if s.dropped%100 == 1 {
			s.logger.Warn("outbound queue full, dropping updates",
				logger.Int("dropped_total", s.dropped))
		}
	}
}

func (s *Session) close() {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.out)
}

func buildUpdates(
	pilotSet, pilotDel []*model.Pilot,
	arptSet, arptDel []*model.Airport,
	firSet, firDel []*model.FIR,
) []model.Update {
	var updates []model.Update
	if len(pilotSet) > 0 {
		updates = append(updates, model.Update{Pilots: &model.PilotUpdate{Kind: model.UpdateSet, Pilots: pilotSet}})
	}
	if len(pilotDel) > 0 {
		updates = append(updates, model.Update{Pilots: &model.PilotUpdate{Kind: model.UpdateDelete, Pilots: pilotDel}})
	}
	if len(arptSet) > 0 {
		updates = append(updates, model.Update{Airports: &model.AirportUpdate{Kind: model.UpdateSet, Airports: arptSet}})
	}
	if len(arptDel) > 0 {
		updates = append(updates, model.Update{Airports: &model.AirportUpdate{Kind: model.UpdateDelete, Airports: arptDel}})
	}
	if len(firSet) > 0 {
		updates = append(updates, model.Update{FIRs: &model.FirUpdate{Kind: model.UpdateSet, FIRs: firSet}})
	}
	if len(firDel) > 0 {
		updates = append(updates, model.Update{FIRs: &model.FirUpdate{Kind: model.UpdateDelete, FIRs: firDel}})
	}
	return updates
}
