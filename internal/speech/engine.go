package speech

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultListenDelay       = 500 * time.Millisecond
	DefaultNextQuestionDelay = time.Second
)

// AnswerFunc receives the transcript for the question at index. The next
// question is not spoken until it returns. It must not call StartInterview.
type AnswerFunc func(index int, transcript string)

// Engine cycles through a list of questions. At most one automatic cycle
// and at most one capture are active at any time.
type Engine struct {
	synth             Synthesizer
	rec               Recognizer
	logger            *zap.Logger
	listenDelay       time.Duration
	nextQuestionDelay time.Duration

	mu      sync.Mutex
	state   State
	index   int
	total   int
	capture *Capture
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

type Option func(*Engine)

// WithDelays sets the pause before listening and the pause between questions.
// Negative values are ignored.
func WithDelays(listen, nextQuestion time.Duration) Option {
	return func(e *Engine) {
		if listen >= 0 {
			e.listenDelay = listen
		}
		if nextQuestion >= 0 {
			e.nextQuestionDelay = nextQuestion
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(synth Synthesizer, rec Recognizer, opts ...Option) *Engine {
	e := &Engine{
		synth:             synth,
		rec:               rec,
		logger:            zap.NewNop(),
		listenDelay:       DefaultListenDelay,
		nextQuestionDelay: DefaultNextQuestionDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) SpeechAvailable() bool {
	return e.synth != nil && e.synth.Available()
}

func (e *Engine) RecognitionAvailable() bool {
	return e.rec != nil && e.rec.Available()
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Index returns the index of the question currently being asked.
func (e *Engine) Index() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

// Total returns the number of questions of the last started interview.
func (e *Engine) Total() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.total
}

// StartInterview starts asking questions from index 0 in a background
// goroutine. A run already in progress is stopped first. An empty question
// list leaves the engine idle.
func (e *Engine) StartInterview(ctx context.Context, questions []string, onAnswer AnswerFunc) error {
	if len(questions) == 0 {
		return nil
	}
	if !e.SpeechAvailable() || !e.RecognitionAvailable() {
		return ErrUnavailable
	}

	e.mu.Lock()
	prev := e.done
	e.mu.Unlock()
	if prev != nil {
		e.StopInterview()
		<-prev
	}

	qs := append([]string(nil), questions...)
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	e.mu.Lock()
	e.state = Idle
	e.index = 0
	e.total = len(qs)
	e.cancel = cancel
	e.done = done
	e.err = nil
	e.mu.Unlock()

	go e.run(runCtx, cancel, qs, onAnswer, done)
	return nil
}

func (e *Engine) run(ctx context.Context, cancel context.CancelFunc, questions []string, onAnswer AnswerFunc, done chan struct{}) {
	defer close(done)
	defer cancel()

	for i := range questions {
		e.setState(Speaking)
		if err := e.synth.Speak(ctx, questions[i]); err != nil {
			e.finish(ctx, err)
			return
		}
		e.speechEnded()

		if !sleep(ctx, e.listenDelay) {
			e.finish(ctx, ErrStopped)
			return
		}

		c, cctx, err := e.acquire(ctx)
		if err != nil {
			e.finish(ctx, err)
			return
		}
		transcript, err := e.rec.Recognize(cctx)
		stopped := cctx.Err() != nil
		c.Stop()
		if err != nil {
			if stopped {
				err = ErrStopped
			}
			e.finish(ctx, err)
			return
		}

		if onAnswer != nil {
			onAnswer(i, transcript)
		}

		if i == len(questions)-1 {
			e.mu.Lock()
			e.index = len(questions)
			e.mu.Unlock()
			break
		}
		e.mu.Lock()
		e.index = i + 1
		e.mu.Unlock()

		if !sleep(ctx, e.nextQuestionDelay) {
			e.finish(ctx, ErrStopped)
			return
		}
	}
	e.finish(ctx, nil)
}

func (e *Engine) finish(ctx context.Context, err error) {
	if err != nil && ctx.Err() != nil {
		err = ErrStopped
	}

	e.mu.Lock()
	e.state = Idle
	if e.capture != nil {
		e.state = Listening
	}
	e.err = err
	index := e.index
	e.mu.Unlock()

	switch {
	case err == nil:
		e.logger.Debug("interview cycle finished", zap.Int("questions", index))
	case errors.Is(err, ErrStopped):
		e.logger.Debug("interview cycle stopped", zap.Int("index", index))
	default:
		e.logger.Warn("interview cycle failed", zap.Int("index", index), zap.Error(err))
	}
}

// Wait blocks until the current automatic cycle ends and returns its
// terminal error: nil after the last answer, ErrStopped after StopInterview,
// or the recognition or synthesis failure that ended it.
func (e *Engine) Wait() error {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// StopInterview cancels speech output, any capture and the automatic
// cycle. It is safe to call in any state, any number of times.
func (e *Engine) StopInterview() {
	e.mu.Lock()
	cancel := e.cancel
	c := e.capture
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if e.synth != nil {
		e.synth.Cancel()
	}
	if c != nil {
		c.Stop()
	}

	e.setState(Idle)
}

// StartListening takes a single manual capture and delivers the transcript
// to onResult. It fails with ErrCaptureBusy while another capture is held.
func (e *Engine) StartListening(ctx context.Context, onResult func(string)) (*Capture, error) {
	if !e.RecognitionAvailable() {
		return nil, ErrUnavailable
	}

	c, cctx, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		transcript, err := e.rec.Recognize(cctx)
		c.Stop()
		if err != nil {
			e.logger.Debug("manual capture ended without transcript", zap.Error(err))
			return
		}
		if onResult != nil {
			onResult(transcript)
		}
	}()
	return c, nil
}

// StopListening releases the outstanding capture, if any.
func (e *Engine) StopListening() {
	e.mu.Lock()
	c := e.capture
	e.mu.Unlock()
	if c != nil {
		c.Stop()
	}
}

func (e *Engine) acquire(ctx context.Context) (*Capture, context.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.capture != nil {
		e.logger.Debug("capture requested while another is active")
		return nil, nil, ErrCaptureBusy
	}

	cctx, cancel := context.WithCancel(ctx)
	c := &Capture{engine: e, cancel: cancel}
	e.capture = c
	if e.state != Speaking {
		e.state = Listening
	}
	return c, cctx, nil
}

func (e *Engine) release(c *Capture) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.capture != c {
		return
	}
	e.capture = nil
	if e.state == Listening {
		e.state = Idle
	}
}

// speechEnded leaves Speaking for Listening when a manual capture was taken
// during the utterance, and for Idle otherwise.
func (e *Engine) speechEnded() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.capture != nil {
		e.state = Listening
		return
	}
	e.state = Idle
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
