package director

import "github.com/kingrea/sce/internal/env"

// Status enumerates coarse director phases.
type Status string

const (
	// StatusDraining means the active set is empty and the next tick pulls
	// new commands from the program.
	StatusDraining Status = "draining"
	// StatusPolling means at least one command is in flight; the program is
	// not consulted until all of them finish.
	StatusPolling Status = "polling"
	// StatusIdle means the program is exhausted and nothing is in flight.
	// Ticks are no-ops from here on.
	StatusIdle Status = "idle"
)

// Snapshot is a read-only view of the director between ticks.
type Snapshot struct {
	RunID   string
	Tick    uint64
	Status  Status
	Cursor  int
	Len     int
	Active  int
	RunMode env.RunMode
}

// EventType enumerates trace events.
type EventType string

const (
	EventInstantiated EventType = "instantiated"
	EventParked       EventType = "parked"
	EventCompleted    EventType = "completed"
	EventExhausted    EventType = "exhausted"
)

// Event reports one scheduling decision. Index is the program position of the
// command involved, or -1 for EventExhausted.
type Event struct {
	Type  EventType
	Tick  uint64
	Index int
	Kind  string
	Label string
}
