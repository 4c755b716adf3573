//go:build !linux

package hotkey

import (
	"sync"

	"golang.design/x/hotkey"
)

type comboSource struct {
	hk     *hotkey.Hotkey
	events chan Event
	stop   chan struct{}
	once   sync.Once
}

// NewCombo listens for Ctrl+Shift+Space through the platform hotkey API.
func NewCombo() Source {
	return &comboSource{
		hk:     hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeySpace),
		events: make(chan Event, 8),
		stop:   make(chan struct{}),
	}
}

func (c *comboSource) Start() error {
	if err := c.hk.Register(); err != nil {
		return err
	}
	go func() {
		for {
			select {
			case <-c.stop:
				return
			case <-c.hk.Keydown():
				emit(c.events, Event{Kind: Pressed, Source: Combo})
			}
		}
	}()
	go func() {
		for {
			select {
			case <-c.stop:
				return
			case <-c.hk.Keyup():
				emit(c.events, Event{Kind: Released, Source: Combo})
			}
		}
	}()
	return nil
}

func (c *comboSource) Stop() {
	c.once.Do(func() {
		close(c.stop)
		c.hk.Unregister()
	})
}

func (c *comboSource) Events() <-chan Event {
	return c.events
}

func Diagnose() (string, error) {
	return "hotkey support available (Ctrl+Shift+Space)", nil
}
