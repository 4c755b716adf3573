//go:build !linux

package hotkey

import "errors"

// ErrModifierTapUnsupported is returned on platforms without raw key
// access; the combo trigger works everywhere.
var ErrModifierTapUnsupported = errors.New("modifier-tap trigger requires linux evdev access")

type modTapStub struct {
	events chan Event
}

func NewModifierTap(key uint16) Source {
	return &modTapStub{events: make(chan Event)}
}

func (m *modTapStub) Start() error          { return ErrModifierTapUnsupported }
func (m *modTapStub) Stop()                 {}
func (m *modTapStub) Events() <-chan Event  { return m.events }
