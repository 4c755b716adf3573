package transcriber

import (
	"context"
	"fmt"
)

type FakeTranscriber struct {
	text  string
	err   error
	lang  string
	Calls []string
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{text: text, err: err}
}

func (f *FakeTranscriber) Name() string           { return "fake" }
func (f *FakeTranscriber) SetLanguage(lang string) { f.lang = lang }
func (f *FakeTranscriber) GetLanguage() string     { return f.lang }

func (f *FakeTranscriber) Transcribe(_ context.Context, wavPath string) (string, error) {
	f.Calls = append(f.Calls, wavPath)
	if f.err != nil {
		return "", fmt.Errorf("fake transcriber error: %w", f.err)
	}
	return f.text, nil
}
