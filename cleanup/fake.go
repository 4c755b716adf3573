package cleanup

import (
	"context"
	"fmt"
)

type FakeCleaner struct {
	Out   string
	Err   error
	Calls []string
}

func NewFake(out string, err error) *FakeCleaner {
	return &FakeCleaner{Out: out, Err: err}
}

func (f *FakeCleaner) Process(_ context.Context, text string) (string, error) {
	f.Calls = append(f.Calls, text)
	if f.Err != nil {
		return "", fmt.Errorf("fake cleaner error: %w", f.Err)
	}
	return f.Out, nil
}
