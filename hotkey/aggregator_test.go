package hotkey

import (
	"errors"
	"sync"
	"testing"
	"time"

	"murmur/session"
)

type fakeSession struct {
	mu       sync.Mutex
	state    session.State
	starts   int
	stops    int
	startErr error
}

func (f *fakeSession) State() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSession) RequestStart() (session.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.startErr != nil {
		return f.state, f.startErr
	}
	f.state = session.Recording
	return f.state, nil
}

func (f *fakeSession) RequestStop() (session.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.state = session.Processing
	return f.state, nil
}

func (f *fakeSession) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stops
}

func startAggregator(t *testing.T, src Source, sess SessionControl) *Aggregator {
	t.Helper()
	agg := NewAggregator(src, sess, 5*time.Millisecond)
	if err := agg.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(agg.Stop)
	return agg
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for condition")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestAggregatorPressStartsWhenIdle(t *testing.T) {
	fk := NewFakeSource()
	sess := &fakeSession{state: session.Idle}
	startAggregator(t, fk, sess)

	fk.Press(Combo)
	waitFor(t, func() bool { return sess.State() == session.Recording })

	starts, stops := sess.counts()
	if starts != 1 || stops != 0 {
		t.Errorf("got %d starts, %d stops, want 1, 0", starts, stops)
	}
}

func TestAggregatorReleaseStopsWhileRecording(t *testing.T) {
	fk := NewFakeSource()
	sess := &fakeSession{state: session.Recording}
	startAggregator(t, fk, sess)

	fk.Release(ModifierTap)
	waitFor(t, func() bool { return sess.State() == session.Processing })

	starts, stops := sess.counts()
	if starts != 0 || stops != 1 {
		t.Errorf("got %d starts, %d stops, want 0, 1", starts, stops)
	}
}

func TestAggregatorFoldsBurstToLatest(t *testing.T) {
	fk := NewFakeSource()
	sess := &fakeSession{state: session.Idle}
	agg := NewAggregator(fk, sess, 50*time.Millisecond)
	if err := agg.Start(); err != nil {
		t.Fatal(err)
	}
	defer agg.Stop()

	// A full press-release bounce inside one poll interval folds to the
	// final Released, which is a no-op while idle.
	fk.Press(Combo)
	fk.Release(Combo)
	time.Sleep(120 * time.Millisecond)

	starts, stops := sess.counts()
	if starts != 0 || stops != 0 {
		t.Errorf("bounce acted on: %d starts, %d stops", starts, stops)
	}
	if sess.State() != session.Idle {
		t.Errorf("state = %v, want Idle", sess.State())
	}
}

func TestAggregatorPressIgnoredWhileBusy(t *testing.T) {
	fk := NewFakeSource()
	sess := &fakeSession{state: session.Processing}
	startAggregator(t, fk, sess)

	fk.Press(Combo)
	time.Sleep(30 * time.Millisecond)

	if starts, _ := sess.counts(); starts != 0 {
		t.Errorf("press while processing triggered %d starts", starts)
	}
}

func TestAggregatorReleaseIgnoredWhenIdle(t *testing.T) {
	fk := NewFakeSource()
	sess := &fakeSession{state: session.Idle}
	startAggregator(t, fk, sess)

	fk.Release(Combo)
	time.Sleep(30 * time.Millisecond)

	if _, stops := sess.counts(); stops != 0 {
		t.Errorf("release while idle triggered %d stops", stops)
	}
}

func TestAggregatorStartErrorPropagates(t *testing.T) {
	fk := NewFakeSource()
	fk.StartErr = errors.New("no devices")
	agg := NewAggregator(fk, &fakeSession{}, 0)
	if err := agg.Start(); err == nil {
		t.Fatal("expected source start error")
	}
}

func TestAggregatorStopTearsDownSource(t *testing.T) {
	fk := NewFakeSource()
	agg := NewAggregator(fk, &fakeSession{}, 5*time.Millisecond)
	if err := agg.Start(); err != nil {
		t.Fatal(err)
	}
	agg.Stop()
	agg.Stop() // idempotent
	if !fk.Stopped() {
		t.Error("source not stopped")
	}
}
