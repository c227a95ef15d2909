package core

import "fmt"

// Ref is a comparable (type, id) handle to an entity.
// It is the Go form of a JSON:API resource identifier.
type Ref struct {
	Type string
	ID   string
}

func (r Ref) String() string {
	return r.Type + "/" + r.ID
}

// EventKind represents the type of change applied to the graph.
type EventKind string

const (
	// EventCreate is emitted when an entity is first indexed, placeholder or not.
	EventCreate EventKind = "CREATE"
	// EventPromote is emitted when a placeholder receives its own record.
	EventPromote EventKind = "PROMOTE"
	// EventUpdate is emitted when an already real entity is synced again.
	EventUpdate EventKind = "UPDATE"
	EventDelete EventKind = "DELETE"
	EventReset  EventKind = "RESET"
)

// Event represents a change in the store.
type Event struct {
	Kind EventKind
	Type string
	ID   string
}

// String implements fmt.Stringer (and lifecycle.Event).
func (e Event) String() string {
	if e.Kind == EventReset {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s %s/%s", e.Kind, e.Type, e.ID)
}

// Listener observes store mutations.
// It is invoked synchronously on the goroutine that mutates the store.
type Listener func(Event)

// ChannelListener returns a Listener that forwards events to ch without blocking.
// Events are dropped when ch is full.
func ChannelListener(ch chan<- Event) Listener {
	return func(e Event) {
		select {
		case ch <- e:
		default:
		}
	}
}
