// Package session arbitrates recording start/stop requests with a
// three-state machine, so duplicate or out-of-order input events can
// never open two capture streams or stop one twice.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

type State int

const (
	Idle State = iota
	Recording
	Processing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Processing:
		return "processing"
	}
	return "unknown"
}

// Recorder is the capture engine surface the session drives. Only the
// session may start or stop capture.
type Recorder interface {
	Start(path string) error
	Stop() (string, error)
}

// Handler runs the post-capture pipeline for one recording. It is
// invoked on its own goroutine with the finalized audio path and the
// capture duration, and must call Complete when done.
type Handler func(path string, dur time.Duration)

// Session is the recording state machine. All transitions are
// serialized under one mutex; requests that do not match the current
// state are no-ops returning the state unchanged.
type Session struct {
	recorder Recorder
	handler  Handler
	tempDir  string

	mu        sync.Mutex
	state     State
	startedAt time.Time
}

func New(recorder Recorder, handler Handler) *Session {
	return &Session{
		recorder: recorder,
		handler:  handler,
		tempDir:  os.TempDir(),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RequestStart moves Idle to Recording and starts capture into a fresh
// temp file. In any other state it is a no-op, so a racing duplicate
// press event cannot start a second capture.
func (s *Session) RequestStart() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle {
		return s.state, nil
	}

	path := filepath.Join(s.tempDir, fmt.Sprintf("murmur_%d_%s.wav",
		time.Now().Unix(), uuid.NewString()[:8]))
	if err := s.recorder.Start(path); err != nil {
		return s.state, err
	}
	s.state = Recording
	s.startedAt = time.Now()
	return s.state, nil
}

// RequestStop moves Recording to Processing, stops capture and hands
// the finalized file to the handler. A stray duplicate release event
// arriving in Processing or Idle is harmless.
func (s *Session) RequestStop() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Recording {
		return s.state, nil
	}

	s.state = Processing
	dur := time.Since(s.startedAt)
	path, err := s.recorder.Stop()
	if err != nil {
		// Nothing to process; fall straight back to Idle.
		s.state = Idle
		return s.state, err
	}

	go s.handler(path, dur)
	return s.state, nil
}

// Complete returns the machine to Idle. Called by the pipeline when it
// finishes, success or failure alike.
func (s *Session) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Idle
}
