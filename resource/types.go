package resource

// Handle is an opaque reference to a resource in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// TypeID tags the kind of object a handle refers to. Identity checks on
// handles compare tags, never the shape of the stored value.
type TypeID uint32

const (
	TypeNone TypeID = iota
	TypeSchema
	TypeValue
)

func (t TypeID) String() string {
	switch t {
	case TypeSchema:
		return "schema"
	case TypeValue:
		return "value"
	default:
		return "none"
	}
}

// Event types for resource lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

// Event represents a resource lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	TypeID TypeID
	Type   EventType
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnResourceEvent calls f(e).
func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }

// Backend provides the underlying storage mechanism for resources.
type Backend interface {
	// Create stores a value and returns a handle.
	Create(typeID TypeID, value any) (Handle, error)

	// Get retrieves a value by handle.
	Get(handle Handle) (any, bool)

	// TypeID returns the tag a handle was created with.
	TypeID(handle Handle) (TypeID, bool)

	// Drop removes a resource and returns (value, true) if its finalizer should run.
	Drop(handle Handle) (any, bool)

	// Len returns the number of live handles.
	Len() int

	// Each calls fn for every live handle until fn returns false.
	Each(fn func(Handle, TypeID, any) bool)

	// Close releases all resources held by the backend.
	Close() error
}

// Dropper is implemented by resource values that need cleanup. Drop is the
// finalizer hook: the table calls it exactly once when the handle is removed.
type Dropper interface {
	Drop()
}
