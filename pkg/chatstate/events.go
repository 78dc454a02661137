package chatstate

type EventKind string

const (
	EventDirectory  EventKind = "directory"
	EventMessage    EventKind = "message"
	EventTyping     EventKind = "typing"
	EventPresence   EventKind = "presence"
	EventActiveChat EventKind = "active_chat"
	EventRead       EventKind = "read"
	EventHistory    EventKind = "history"
)

// Event describes a completed mutation. Handle is the affected peer, empty
// for directory-wide changes. Listeners observe fully committed state: the
// manager emits only after the mutation is applied and its lock released.
type Event struct {
	Kind   EventKind
	Handle string
}

// Listener receives change notifications. Listeners run synchronously on
// the mutating goroutine and must not block.
type Listener func(Event)
