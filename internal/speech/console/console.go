// Package console implements the speech capabilities on a terminal: the
// interviewer's questions are printed and the candidate's answers are typed,
// one line per utterance.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/kiranshivaraju/mockview/internal/speech"
)

const (
	basePace = 20 * time.Millisecond

	// maxLineSize bounds a single typed answer.
	maxLineSize = 1 << 20
)

var preferredVoiceMarkers = []string{"Google", "Natural", "Premium"}

// PreferredVoice returns the first voice whose name contains Google, Natural
// or Premium, or "" when none does.
func PreferredVoice(voices []string) string {
	for _, v := range voices {
		for _, marker := range preferredVoiceMarkers {
			if strings.Contains(v, marker) {
				return v
			}
		}
	}
	return ""
}

// PaceForRate converts a speaking rate (1.0 is normal speed) into a per-rune
// delay for the Speaker. Non-positive rates disable pacing.
func PaceForRate(rate float64) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(float64(basePace) / rate)
}

// Speaker prints each utterance as "Interviewer: <text>".
type Speaker struct {
	w     io.Writer
	pace  time.Duration
	voice string

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ speech.Synthesizer = (*Speaker)(nil)

type SpeakerOption func(*Speaker)

// WithPace writes the text one rune at a time with the given delay.
func WithPace(d time.Duration) SpeakerOption {
	return func(s *Speaker) { s.pace = d }
}

// WithVoices picks the preferred voice out of voices and shows it in the label.
func WithVoices(voices ...string) SpeakerOption {
	return func(s *Speaker) { s.voice = PreferredVoice(voices) }
}

func NewSpeaker(w io.Writer, opts ...SpeakerOption) *Speaker {
	s := &Speaker{w: w}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Voice returns the selected voice, or "" when the default label is used.
func (s *Speaker) Voice() string { return s.voice }

func (s *Speaker) Available() bool { return s.w != nil }

func (s *Speaker) Speak(ctx context.Context, text string) error {
	if s.w == nil {
		return speech.ErrUnavailable
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		cancel()
		s.cancel = nil
		s.mu.Unlock()
	}()

	label := "Interviewer"
	if s.voice != "" {
		label += " (" + s.voice + ")"
	}
	if _, err := fmt.Fprintf(s.w, "%s: ", label); err != nil {
		return fmt.Errorf("write utterance: %w", err)
	}

	if s.pace <= 0 {
		if _, err := fmt.Fprintln(s.w, text); err != nil {
			return fmt.Errorf("write utterance: %w", err)
		}
		return ctx.Err()
	}

	t := time.NewTicker(s.pace)
	defer t.Stop()
	for _, r := range text {
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.w)
			return ctx.Err()
		case <-t.C:
		}
		if _, err := fmt.Fprint(s.w, string(r)); err != nil {
			return fmt.Errorf("write utterance: %w", err)
		}
	}
	_, err := fmt.Fprintln(s.w)
	return err
}

// Cancel cuts the utterance in progress short.
func (s *Speaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Listener reads one trimmed line per Recognize call. A blank line is
// reported as ErrNoSpeech and end of input as ErrUnavailable. A read failure,
// including a line longer than 1 MiB, is returned as is.
type Listener struct {
	prompt io.Writer
	label  string

	once  sync.Once
	r     io.Reader
	lines chan string
	eof   chan struct{}
	err   error
}

var _ speech.Recognizer = (*Listener)(nil)

type ListenerOption func(*Listener)

// WithPrompt writes label to w before every read.
func WithPrompt(w io.Writer, label string) ListenerOption {
	return func(l *Listener) {
		l.prompt = w
		l.label = label
	}
}

func NewListener(r io.Reader, opts ...ListenerOption) *Listener {
	l := &Listener{
		r:     r,
		lines: make(chan string),
		eof:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Listener) Available() bool { return l.r != nil }

func (l *Listener) Recognize(ctx context.Context) (string, error) {
	if l.r == nil {
		return "", speech.ErrUnavailable
	}
	l.once.Do(l.start)

	if l.prompt != nil && l.label != "" {
		fmt.Fprint(l.prompt, l.label)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line := <-l.lines:
		line = strings.TrimSpace(line)
		if line == "" {
			return "", speech.ErrNoSpeech
		}
		return line, nil
	case <-l.eof:
		if l.err != nil {
			return "", fmt.Errorf("read answer: %w", l.err)
		}
		return "", speech.ErrUnavailable
	}
}

// start feeds lines from the reader. A line read while nobody is listening
// is held until the next Recognize call.
func (l *Listener) start() {
	go func() {
		defer close(l.eof)
		scanner := bufio.NewScanner(l.r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			l.lines <- scanner.Text()
		}
		l.err = scanner.Err()
	}()
}
