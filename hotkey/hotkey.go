// Package hotkey turns global keyboard activity into push-to-talk events.
//
// Two event sources exist: a key-combo source (Ctrl+Shift+Space) and a
// modifier-tap source that watches a single modifier key. Exactly one is
// active at a time; the Aggregator polls whichever is active and drives
// the recording session from its events.
package hotkey

// Kind is the direction of a key transition.
type Kind int

const (
	Pressed Kind = iota
	Released
)

func (k Kind) String() string {
	if k == Pressed {
		return "pressed"
	}
	return "released"
}

// SourceTag identifies which listener produced an event.
type SourceTag int

const (
	Combo SourceTag = iota
	ModifierTap
)

func (s SourceTag) String() string {
	if s == Combo {
		return "combo"
	}
	return "modifier-tap"
}

// Event is a single edge observed on the trigger key.
type Event struct {
	Kind   Kind
	Source SourceTag
}

// Source is a global key listener. Events() is buffered; sources drop
// events rather than block when the consumer falls behind.
type Source interface {
	Start() error
	Stop()
	Events() <-chan Event
}

// emit performs the non-blocking send all sources share.
func emit(ch chan Event, ev Event) {
	select {
	case ch <- ev:
	default:
	}
}
