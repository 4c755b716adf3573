// Package transcriber converts recorded WAV audio to text.
package transcriber

import (
	"context"
)

// Transcriber is a speech-to-text backend. Transcribe blocks until the
// audio at wavPath has been fully processed.
type Transcriber interface {
	Name() string
	SetLanguage(lang string)
	GetLanguage() string
	Transcribe(ctx context.Context, wavPath string) (string, error)
}
