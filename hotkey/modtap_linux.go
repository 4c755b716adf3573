//go:build linux

package hotkey

import (
	"encoding/binary"
	"os"
	"sync"
)

type modTapSource struct {
	key    uint16
	events chan Event
	files  []*os.File
	stop   chan struct{}
	once   sync.Once

	mu   sync.Mutex
	held bool
}

// NewModifierTap emits an event on every transition of a single modifier
// key, identified by its evdev code. Right Ctrl is the usual choice since
// it rarely participates in shortcuts.
func NewModifierTap(key uint16) Source {
	if key == 0 {
		key = keyRCtrl
	}
	return &modTapSource{
		key:    key,
		events: make(chan Event, 8),
		stop:   make(chan struct{}),
	}
}

func (m *modTapSource) Start() error {
	files, err := openKeyboards(m.readEvents)
	if err != nil {
		return err
	}
	m.files = files
	return nil
}

func (m *modTapSource) readEvents(f *os.File) {
	buf := make([]byte, inputEventSize*16)

	for {
		select {
		case <-m.stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}

		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			evType := binary.LittleEndian.Uint16(buf[i+16:])
			evCode := binary.LittleEndian.Uint16(buf[i+18:])
			evValue := int32(binary.LittleEndian.Uint32(buf[i+20:]))

			if evType != evKey || evCode != m.key {
				continue
			}

			switch evValue {
			case keyPress:
				m.transition(true)
			case keyRelease:
				m.transition(false)
			}
		}
	}
}

// transition dedupes across multiple keyboard readers so a key repeat or
// a second device never produces a double edge.
func (m *modTapSource) transition(down bool) {
	m.mu.Lock()
	changed := m.held != down
	m.held = down
	m.mu.Unlock()
	if !changed {
		return
	}
	if down {
		emit(m.events, Event{Kind: Pressed, Source: ModifierTap})
	} else {
		emit(m.events, Event{Kind: Released, Source: ModifierTap})
	}
}

func (m *modTapSource) Stop() {
	m.once.Do(func() {
		close(m.stop)
		for _, f := range m.files {
			f.Close()
		}
	})
}

func (m *modTapSource) Events() <-chan Event {
	return m.events
}
