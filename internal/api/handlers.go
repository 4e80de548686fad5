package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yegors/vatmap/internal/filter"
	"github.com/yegors/vatmap/internal/model"
	"github.com/yegors/vatmap/internal/relay"
	"github.com/yegors/vatmap/internal/storage/sqlite"
	"github.com/yegors/vatmap/internal/ws"
	"github.com/yegors/vatmap/pkg/logger"
)

// Handler implements the unary API endpoints
type Handler struct {
	relay    *relay.Relay
	tracks   *sqlite.TrackStorage // may be nil
	wsServer *ws.Server
	logger   *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(r *relay.Relay, tracks *sqlite.TrackStorage, wsServer *ws.Server, log *logger.Logger) *Handler {
	return &Handler{
		relay:    r,
		tracks:   tracks,
		wsServer: wsServer,
		logger:   log.Named("api-handler"),
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", logger.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, map[string]string{"error": msg})
}

// GetPilots returns every pilot in the current snapshot, optionally
// narrowed by a one-shot query expression
func (h *Handler) GetPilots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	pilots, err := h.relay.PilotsByQuery(query)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if pilots == nil {
		pilots = []*model.Pilot{}
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"pilots": pilots,
		"count":  len(pilots),
	})
}

// GetPilotByCallsign returns one pilot from the current snapshot
func (h *Handler) GetPilotByCallsign(w http.ResponseWriter, r *http.Request) {
	callsign := chi.URLParam(r, "callsign")
	pilot, err := h.relay.PilotByCallsign(callsign)
	if err != nil {
		if errors.Is(err, relay.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "pilot not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	h.respondJSON(w, http.StatusOK, pilot)
}

// GetPilotTrack returns the persisted track of a pilot's current flight
func (h *Handler) GetPilotTrack(w http.ResponseWriter, r *http.Request) {
	callsign := chi.URLParam(r, "callsign")
	pilot, err := h.relay.PilotByCallsign(callsign)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "pilot not found")
		return
	}

	track := pilot.Track
	if h.tracks != nil {
		stored, err := h.tracks.GetTrack(pilot.Callsign, pilot.LogonTime)
		if err != nil {
			h.logger.Warn("failed to load stored track",
				logger.String("callsign", callsign), logger.Error(err))
		} else if len(stored) > len(track) {
			track = stored
		}
	}
	if track == nil {
		track = []model.TrackPoint{}
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"callsign": pilot.Callsign,
		"track":    track,
	})
}

// GetAirportByCode returns one airport from the current snapshot by ICAO
// or IATA code
func (h *Handler) GetAirportByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	arpt, err := h.relay.AirportByCode(code)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "airport not found")
		return
	}
	h.respondJSON(w, http.StatusOK, arpt)
}

type checkQueryRequest struct {
	Query string `json:"query"`
}

type checkQueryResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// CheckQuery validates a query expression without subscribing to it
func (h *Handler) CheckQuery(w http.ResponseWriter, r *http.Request) {
	var req checkQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := filter.CheckQuery(req.Query); err != nil {
		h.respondJSON(w, http.StatusOK, checkQueryResponse{Valid: false, Error: err.Error()})
		return
	}
	h.respondJSON(w, http.StatusOK, checkQueryResponse{Valid: true})
}

// GetHealth reports service liveness and basic snapshot stats
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":   "ok",
		"sessions": h.relay.SessionCount(),
	}
	if snap := h.relay.Snapshot(); snap != nil {
		resp["pilots"] = len(snap.Pilots)
		resp["airports"] = len(snap.Airports)
		resp["firs"] = len(snap.FIRs)
		resp["snapshot_at"] = snap.UpdatedAt.Format(time.RFC3339)
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// HandleWebSocket upgrades the connection and hands it to the stream server
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.wsServer.HandleConnection(w, r)
}
