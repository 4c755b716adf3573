package hotkey

// FakeSource drives the aggregator from tests.
type FakeSource struct {
	StartErr error
	events   chan Event
	stopped  bool
}

func NewFakeSource() *FakeSource {
	return &FakeSource{events: make(chan Event, 8)}
}

func (f *FakeSource) Start() error         { return f.StartErr }
func (f *FakeSource) Stop()                { f.stopped = true }
func (f *FakeSource) Events() <-chan Event { return f.events }
func (f *FakeSource) Stopped() bool        { return f.stopped }

func (f *FakeSource) Press(tag SourceTag)   { f.events <- Event{Kind: Pressed, Source: tag} }
func (f *FakeSource) Release(tag SourceTag) { f.events <- Event{Kind: Released, Source: tag} }
