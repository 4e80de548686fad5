package model

// UpdateKind tags a batch as upserts or removals
type UpdateKind string

const (
	UpdateSet    UpdateKind = "set"
	UpdateDelete UpdateKind = "delete"
)

// PilotUpdate is one batch of pilot changes. DELETE batches carry
// identity-only records (callsign set, everything else zero).
type PilotUpdate struct {
	Kind   UpdateKind `json:"kind"`
	Pilots []*Pilot   `json:"pilots"`
}

// AirportUpdate is one batch of airport changes
type AirportUpdate struct {
	Kind     UpdateKind `json:"kind"`
	Airports []*Airport `json:"airports"`
}

// FirUpdate is one batch of FIR changes
type FirUpdate struct {
	Kind UpdateKind `json:"kind"`
	FIRs []*FIR     `json:"firs"`
}

// Update is one envelope on a subscriber's map stream; exactly one of the
// fields is set
type Update struct {
	Pilots   *PilotUpdate   `json:"pilots,omitempty"`
	Airports *AirportUpdate `json:"airports,omitempty"`
	FIRs     *FirUpdate     `json:"firs,omitempty"`
}

// QueryUpdateKind classifies a named-query notification
type QueryUpdateKind string

const (
	QueryUpdateOnline     QueryUpdateKind = "online"
	QueryUpdateOffline    QueryUpdateKind = "offline"
	QueryUpdateFlightplan QueryUpdateKind = "flightplan"
)

// QueryUpdate is one named-query notification: the pilot matched the
// subscription's predicate while coming online, going offline or changing
// flight plan
type QueryUpdate struct {
	SubscriptionID string          `json:"subscription_id"`
	Kind           QueryUpdateKind `json:"kind"`
	Pilot          *Pilot          `json:"pilot"`
}

// ServerMessage is one outbound frame on a subscriber stream: either a map
// update or a named-query notification
type ServerMessage struct {
	Update      *Update      `json:"update,omitempty"`
	QueryUpdate *QueryUpdate `json:"query_update,omitempty"`
}
