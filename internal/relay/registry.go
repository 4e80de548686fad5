package relay

import (
	"fmt"
	"sync"

	"github.com/yegors/vatmap/internal/diff"
	"github.com/yegors/vatmap/internal/filter"
	"github.com/yegors/vatmap/internal/model"
	"github.com/yegors/vatmap/pkg/logger"
)

// Registry holds the durable named-query subscriptions of all live
// sessions. Registrations are keyed (session id, subscription id) so the
// same subscription id may be reused by different sessions.
type Registry struct {
	logger *logger.Logger

	mu      sync.RWMutex
	entries map[string]map[string]*registration
}

// registration keeps a non-owning handle to the delivering session; the
// session sweeps its own registrations on teardown
type registration struct {
	flt  *filter.Filter
	sess *Session
}

// NewRegistry creates an empty named-query registry
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		logger:  log.Named("query-registry"),
		entries: make(map[string]map[string]*registration),
	}
}

func (r *Registry) register(sess *Session, id string, flt *filter.Filter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byID := r.entries[sess.ID()]
	if byID == nil {
		byID = make(map[string]*registration)
		r.entries[sess.ID()] = byID
	}
	if _, ok := byID[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateSubscription, id)
	}
	byID[id] = &registration{flt: flt, sess: sess}
	r.logger.Debug("query subscribed",
		logger.String("session_id", sess.ID()),
		logger.String("subscription_id", id),
		logger.String("query", flt.Source()))
	return nil
}

func (r *Registry) unregister(sessionID, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if byID, ok := r.entries[sessionID]; ok {
		delete(byID, id)
		if len(byID) == 0 {
			delete(r.entries, sessionID)
		}
	}
}

// removeSession drops every registration owned by the session in one sweep
func (r *Registry) removeSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sessionID)
}

// Len returns the total number of live registrations
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, byID := range r.entries {
		n += len(byID)
	}
	return n
}

// Notify evaluates every registration against the cycle's pilot
// transitions and delivers a notification per match to the owning
// session. Matching ONLINE and later OFFLINE both notify; there is no
// deduplication.
func (r *Registry) Notify(transitions []diff.Transition) {
	if len(transitions) == 0 {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range transitions {
		for _, byID := range r.entries {
			for id, reg := range byID {
				if !reg.flt.Match(t.Pilot) {
					continue
				}
				reg.sess.deliver(model.ServerMessage{QueryUpdate: &model.QueryUpdate{
					SubscriptionID: id,
					Kind:           t.Kind,
					Pilot:          t.Pilot,
				}})
			}
		}
	}
}
