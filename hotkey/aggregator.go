package hotkey

import (
	"sync"
	"time"

	"murmur/log"
	"murmur/session"
)

// DefaultPollInterval is how often the aggregator inspects its source.
const DefaultPollInterval = 50 * time.Millisecond

// SessionControl is the slice of the recording session the aggregator
// drives.
type SessionControl interface {
	State() session.State
	RequestStart() (session.State, error)
	RequestStop() (session.State, error)
}

// Aggregator polls a Source on a fixed interval, folds whatever queued up
// since the last tick down to the most recent event, and edge-triggers the
// session: a press only matters while idle, a release only while
// recording. Everything else a jittery key produces inside one interval
// is absorbed.
type Aggregator struct {
	src      Source
	sess     SessionControl
	interval time.Duration

	stop    chan struct{}
	done    chan struct{}
	started bool
	once    sync.Once
}

func NewAggregator(src Source, sess SessionControl, interval time.Duration) *Aggregator {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Aggregator{
		src:      src,
		sess:     sess,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start registers the source and begins polling.
func (a *Aggregator) Start() error {
	if err := a.src.Start(); err != nil {
		return err
	}
	a.started = true
	go a.run()
	return nil
}

// Stop tears down the source and joins the polling loop.
func (a *Aggregator) Stop() {
	a.once.Do(func() {
		close(a.stop)
		if a.started {
			<-a.done
		}
		a.src.Stop()
	})
}

func (a *Aggregator) run() {
	defer close(a.done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
			if ev, ok := a.drain(); ok {
				a.apply(ev)
			}
		}
	}
}

// drain empties the source channel and keeps only the newest event.
func (a *Aggregator) drain() (Event, bool) {
	var (
		last Event
		got  bool
	)
	for {
		select {
		case ev := <-a.src.Events():
			last = ev
			got = true
		default:
			return last, got
		}
	}
}

func (a *Aggregator) apply(ev Event) {
	switch ev.Kind {
	case Pressed:
		if a.sess.State() != session.Idle {
			return
		}
		if _, err := a.sess.RequestStart(); err != nil {
			log.Errorf("recording start error (%s): %v", ev.Source, err)
		}
	case Released:
		if a.sess.State() != session.Recording {
			return
		}
		if _, err := a.sess.RequestStop(); err != nil {
			log.Errorf("recording stop error (%s): %v", ev.Source, err)
		}
	}
}
