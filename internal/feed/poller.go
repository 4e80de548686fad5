// Package feed turns the upstream VATSIM data feed into immutable
// snapshots: it polls the JSON document, resolves controllers onto static
// airports and FIR boundaries, attaches cached weather and recorded tracks,
// and hands each finished snapshot to the relay.
package feed

import (
	"context"
	"time"

	"github.com/yegors/vatmap/internal/model"
	"github.com/yegors/vatmap/internal/relay"
	"github.com/yegors/vatmap/pkg/logger"
)

// maxTrackPoints caps the per-pilot track attached to snapshots
const maxTrackPoints = 240

// cleanupEveryCycles spaces out track store retention sweeps
const cleanupEveryCycles = 5

// WeatherSource provides cached METAR data for airports
type WeatherSource interface {
	Preload(ctx context.Context, icaos []string)
	Get(icao string) *model.WeatherInfo
}

// TrackRecorder persists pilot track points across restarts
type TrackRecorder interface {
	AppendPoints(pilots []*model.Pilot) error
	Cleanup() (int64, error)
}

// Poller drives the refresh loop: fetch, assemble, ingest
type Poller struct {
	client   *Client
	static   *Static
	wx       WeatherSource // may be nil
	tracks   TrackRecorder // may be nil
	relay    *relay.Relay
	interval time.Duration
	logger   *logger.Logger

	lastUpdate time.Time
	liveTracks map[string][]model.TrackPoint
	cycles     int
}

// NewPoller wires the refresh loop. wx and tracks are optional.
func NewPoller(
	client *Client,
	static *Static,
	wx WeatherSource,
	tracks TrackRecorder,
	r *relay.Relay,
	interval time.Duration,
	log *logger.Logger,
) *Poller {
	return &Poller{
		client:     client,
		static:     static,
		wx:         wx,
		tracks:     tracks,
		relay:      r,
		interval:   interval,
		logger:     log.Named("feed"),
		liveTracks: make(map[string][]model.TrackPoint),
	}
}

// Run polls until the context is cancelled. The first cycle runs
// immediately so sessions opened at startup are not left waiting a full
// interval for data.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("feed poller started",
		logger.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("feed poller stopped")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll runs one refresh cycle. An upstream failure skips the cycle; the
// relay keeps serving the previous snapshot and no session observes a
// partial update.
func (p *Poller) poll(ctx context.Context) {
	data, err := p.client.Fetch(ctx)
	if err != nil {
		p.logger.Warn("feed fetch failed, skipping refresh cycle", logger.Error(err))
		return
	}

	updatedAt := parseFeedTime(data.General.UpdateTimestamp)
	if !updatedAt.After(p.lastUpdate) {
		p.logger.Debug("feed document unchanged, skipping refresh cycle",
			logger.Time("update_timestamp", updatedAt))
		return
	}

	snap := p.buildSnapshot(ctx, data, updatedAt)
	p.relay.Ingest(snap)
	p.lastUpdate = updatedAt
	p.cycles++

	if p.tracks != nil && p.cycles%cleanupEveryCycles == 0 {
		if n, err := p.tracks.Cleanup(); err != nil {
			p.logger.Warn("track cleanup failed", logger.Error(err))
		} else if n > 0 {
			p.logger.Debug("track points expired", logger.Int64("removed", n))
		}
	}
}

// buildSnapshot assembles one immutable snapshot from the decoded feed.
// Airports and FIRs enter the snapshot only when something live hangs off
// them: a staffed position, or weather on a previously controlled field.
func (p *Poller) buildSnapshot(ctx context.Context, data *feedData, updatedAt time.Time) *model.Snapshot {
	snap := model.NewSnapshot(updatedAt)

	for i := range data.Pilots {
		fp := &data.Pilots[i]
		if fp.Callsign == "" {
			continue
		}
		if _, ok := snap.Pilots[fp.Callsign]; ok {
			continue // feed occasionally carries duplicate callsigns; first wins
		}
		snap.Pilots[fp.Callsign] = fp.convert()
	}
	p.recordTracks(snap)

	attach := func(fc *feedController, facility model.Facility) {
		ctrl := fc.convert()
		if facility != 0 {
			ctrl.Facility = facility
		}
		switch ctrl.Facility {
		case model.FacilityReject:
			return
		case model.FacilityRadar:
			tmpl := p.static.matchFIR(ctrl.Callsign)
			if tmpl == nil {
				p.logger.Debug("no FIR match for radar controller",
					logger.String("callsign", ctrl.Callsign))
				return
			}
			fir, ok := snap.FIRs[tmpl.ICAO]
			if !ok {
				clone := *tmpl
				clone.Controllers = make(map[string]*model.Controller)
				fir = &clone
				snap.FIRs[tmpl.ICAO] = fir
			}
			fir.Controllers[ctrl.Callsign] = ctrl
		default:
			tmpl := p.static.matchAirport(ctrl.Callsign)
			if tmpl == nil {
				p.logger.Debug("no airport match for controller",
					logger.String("callsign", ctrl.Callsign))
				return
			}
			arpt, ok := snap.Airports[tmpl.ICAO]
			if !ok {
				clone := *tmpl
				arpt = &clone
				snap.Airports[tmpl.ICAO] = arpt
			}
			arpt.Controllers.Set(ctrl)
		}
	}

	for i := range data.Controllers {
		attach(&data.Controllers[i], 0)
	}
	for i := range data.ATIS {
		attach(&data.ATIS[i], model.FacilityATIS)
	}

	if p.wx != nil {
		icaos := make([]string, 0, len(snap.Airports))
		for icao := range snap.Airports {
			icaos = append(icaos, icao)
		}
		p.wx.Preload(ctx, icaos)
		for icao, arpt := range snap.Airports {
			arpt.WX = p.wx.Get(icao)
		}
	}

	return snap
}

// recordTracks extends the in-memory track of every connected pilot,
// attaches the accumulated track to the snapshot copy and persists the new
// points. Tracks of pilots that disconnected are dropped.
func (p *Poller) recordTracks(snap *model.Snapshot) {
	fresh := make(map[string][]model.TrackPoint, len(snap.Pilots))
	for callsign, pilot := range snap.Pilots {
		track := append(p.liveTracks[callsign], model.TrackPoint{
			Timestamp:   pilot.LastUpdated,
			Position:    pilot.Position,
			Altitude:    pilot.Altitude,
			Groundspeed: pilot.Groundspeed,
			Heading:     pilot.Heading,
		})
		if len(track) > maxTrackPoints {
			track = track[len(track)-maxTrackPoints:]
		}
		fresh[callsign] = track
		pilot.Track = track
	}
	p.liveTracks = fresh

	if p.tracks != nil {
		pilots := make([]*model.Pilot, 0, len(snap.Pilots))
		for _, pilot := range snap.Pilots {
			pilots = append(pilots, pilot)
		}
		if err := p.tracks.AppendPoints(pilots); err != nil {
			p.logger.Warn("failed to persist track points", logger.Error(err))
		}
	}
}
