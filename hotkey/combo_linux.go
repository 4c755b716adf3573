//go:build linux

package hotkey

import (
	"encoding/binary"
	"os"
	"sync"
)

type comboSource struct {
	events chan Event
	files  []*os.File
	stop   chan struct{}
	once   sync.Once
}

// NewCombo listens for Ctrl+Shift+Space by reading raw evdev key events.
// X11 grabs steal plain hotkeys under some compositors, so we watch the
// devices directly.
func NewCombo() Source {
	return &comboSource{
		events: make(chan Event, 8),
		stop:   make(chan struct{}),
	}
}

func (c *comboSource) Start() error {
	files, err := openKeyboards(c.readEvents)
	if err != nil {
		return err
	}
	c.files = files
	return nil
}

func (c *comboSource) readEvents(f *os.File) {
	buf := make([]byte, inputEventSize*16)
	var ctrlHeld, shiftHeld, spaceHeld bool

	for {
		select {
		case <-c.stop:
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

			if evType != evKey {
				continue
			}

			pressed := evValue == keyPress
			released := evValue == keyRelease

			switch evCode {
			case keyLCtrl, keyRCtrl:
				ctrlHeld = pressed || (!released && ctrlHeld)
			case keyLShift, keyRShift:
				shiftHeld = pressed || (!released && shiftHeld)
			case keySpace:
				if pressed && !spaceHeld && ctrlHeld && shiftHeld {
					spaceHeld = true
					emit(c.events, Event{Kind: Pressed, Source: Combo})
				} else if released && spaceHeld {
					spaceHeld = false
					emit(c.events, Event{Kind: Released, Source: Combo})
				}
			}
		}
	}
}

func (c *comboSource) Stop() {
	c.once.Do(func() {
		close(c.stop)
		for _, f := range c.files {
			f.Close()
		}
	})
}

func (c *comboSource) Events() <-chan Event {
	return c.events
}
