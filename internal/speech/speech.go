// Package speech runs the spoken turn-taking of an interview: speak a
// question, listen for one utterance, hand the transcript back, move on.
// Output and capture devices are supplied as Synthesizer and Recognizer.
package speech

import (
	"context"
	"errors"
)

var (
	ErrNoSpeech         = errors.New("no speech detected")
	ErrPermissionDenied = errors.New("speech capture permission denied")
	ErrUnavailable      = errors.New("speech capability unavailable")
	ErrCaptureBusy      = errors.New("speech capture already in progress")
	ErrStopped          = errors.New("interview stopped")
)

// Synthesizer speaks text. Speak blocks until the utterance has finished or
// ctx is done; Cancel aborts whatever is being spoken.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
	Cancel()
	Available() bool
}

// Recognizer captures a single utterance and returns its transcript.
// It returns ErrNoSpeech, ErrPermissionDenied or ErrUnavailable on failure and
// ctx.Err() when the capture is stopped.
type Recognizer interface {
	Recognize(ctx context.Context) (string, error)
	Available() bool
}

type State int

const (
	Idle State = iota
	Speaking
	Listening
)

func (s State) String() string {
	switch s {
	case Speaking:
		return "speaking"
	case Listening:
		return "listening"
	default:
		return "idle"
	}
}
