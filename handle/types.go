package handle

import "fmt"

// Handle is an opaque 64-bit reference into a Store.
// The top 8 bits carry the store kind, the next 24 bits a generation
// counter and the low 32 bits the slot index. Handle 0 is always invalid.
type Handle uint64

// Kind tags which store issued a handle.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindTracker
	KindActionSet
	KindAction
	KindProfile
)

func (k Kind) String() string {
	switch k {
	case KindTracker:
		return "tracker"
	case KindActionSet:
		return "action_set"
	case KindAction:
		return "action"
	case KindProfile:
		return "interaction_profile"
	default:
		return "invalid"
	}
}

const (
	indexBits      = 32
	generationBits = 24
	generationMask = 1<<generationBits - 1
)

func makeHandle(kind Kind, generation uint32, index uint32) Handle {
	return Handle(uint64(kind)<<(indexBits+generationBits) |
		uint64(generation&generationMask)<<indexBits |
		uint64(index))
}

// Kind returns the kind tag of the handle.
func (h Handle) Kind() Kind {
	return Kind(h >> (indexBits + generationBits))
}

// Generation returns the generation counter of the handle.
func (h Handle) Generation() uint32 {
	return uint32(h>>indexBits) & generationMask
}

// Index returns the slot index of the handle.
func (h Handle) Index() uint32 {
	return uint32(h)
}

// IsZero reports whether h is the null handle.
func (h Handle) IsZero() bool {
	return h == 0
}

func (h Handle) String() string {
	if h == 0 {
		return "None"
	}
	return fmt.Sprintf("%s#%d.%d", h.Kind(), h.Index(), h.Generation())
}

// EventType identifies a store lifecycle notification.
type EventType uint8

const (
	EventAllocated EventType = iota
	EventFreed
)

// Event represents a handle lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Type   EventType
}

// Observer receives notifications about handle lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}

// Dropper is implemented by records that own native resources.
// Drop is called when the record is freed or the store is cleared.
type Dropper interface {
	Drop()
}
