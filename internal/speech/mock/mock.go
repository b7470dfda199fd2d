// Package mock provides scriptable speech capabilities for tests.
package mock

import (
	"context"
	"sync"

	"github.com/kiranshivaraju/mockview/internal/speech"
)

// Synthesizer satisfies speech.Synthesizer and records what it was asked to say.
type Synthesizer struct {
	SpeakFunc   func(ctx context.Context, text string) error
	Unavailable bool

	mu      sync.Mutex
	spoken  []string
	cancels int
}

var _ speech.Synthesizer = (*Synthesizer)(nil)

func (s *Synthesizer) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	fn := s.SpeakFunc
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, text)
	}
	return ctx.Err()
}

func (s *Synthesizer) Cancel() {
	s.mu.Lock()
	s.cancels++
	s.mu.Unlock()
}

func (s *Synthesizer) Available() bool { return !s.Unavailable }

// Spoken returns a copy of every text passed to Speak, in order.
func (s *Synthesizer) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

func (s *Synthesizer) Cancels() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

// Recognizer satisfies speech.Recognizer.
type Recognizer struct {
	RecognizeFunc func(ctx context.Context) (string, error)
	Unavailable   bool

	mu    sync.Mutex
	calls int
}

var _ speech.Recognizer = (*Recognizer)(nil)

func (r *Recognizer) Recognize(ctx context.Context) (string, error) {
	r.mu.Lock()
	r.calls++
	fn := r.RecognizeFunc
	r.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return "", speech.ErrNoSpeech
}

func (r *Recognizer) Available() bool { return !r.Unavailable }

func (r *Recognizer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// NewScriptedRecognizer returns the given transcripts in order, then
// ErrNoSpeech once they run out.
func NewScriptedRecognizer(transcripts ...string) *Recognizer {
	var mu sync.Mutex
	next := 0
	return &Recognizer{RecognizeFunc: func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		mu.Lock()
		defer mu.Unlock()
		if next >= len(transcripts) {
			return "", speech.ErrNoSpeech
		}
		t := transcripts[next]
		next++
		return t, nil
	}}
}

// NewFailingRecognizer returns a Recognizer that always fails with err.
func NewFailingRecognizer(err error) *Recognizer {
	return &Recognizer{RecognizeFunc: func(_ context.Context) (string, error) {
		return "", err
	}}
}

// NewBlockingRecognizer returns a Recognizer that blocks until its capture is
// stopped. started receives one value per Recognize call once it is blocking.
func NewBlockingRecognizer(started chan<- struct{}) *Recognizer {
	return &Recognizer{RecognizeFunc: func(ctx context.Context) (string, error) {
		if started != nil {
			started <- struct{}{}
		}
		<-ctx.Done()
		return "", ctx.Err()
	}}
}
