// Package session drives one interview from the candidate's side: it loads
// the record, keeps a local answer buffer, persists answers as the candidate
// moves through the questions and requests feedback at the end.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mockview/internal/speech"
	"github.com/kiranshivaraju/mockview/internal/store"
	"github.com/kiranshivaraju/mockview/pkg/models"
	"go.uber.org/zap"
)

const DefaultRedirectDelay = 2 * time.Second

// ErrNotFound is returned by Load when the interview does not exist.
var ErrNotFound = store.ErrNotFound

var (
	ErrNotLoaded = errors.New("no interview loaded")
	ErrCompleted = errors.New("interview already completed")
)

// Recorder persists session progress. It is implemented over HTTP by
// client.Client and in-process by interview.UserScope.
type Recorder interface {
	GetInterview(ctx context.Context, id uuid.UUID) (*models.Interview, error)
	SaveAnswer(ctx context.Context, id uuid.UUID, index int, answer string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) error
	CompleteInterview(ctx context.Context, id uuid.UUID) (*models.Feedback, error)
}

// VoiceEngine is the part of speech.Engine the controller drives.
type VoiceEngine interface {
	StartInterview(ctx context.Context, questions []string, onAnswer speech.AnswerFunc) error
	StopInterview()
}

type Phase int

const (
	NotStarted Phase = iota
	InProgress
	Completing
	Completed
)

func (p Phase) String() string {
	switch p {
	case InProgress:
		return "in-progress"
	case Completing:
		return "completing"
	case Completed:
		return "completed"
	default:
		return "not-started"
	}
}

// CapturedBy records how the answer in the buffer at the current index got
// there. Voice answers are saved as soon as they arrive, so Advance does not
// save them again.
type CapturedBy int

const (
	CapturedNone CapturedBy = iota
	CapturedManual
	CapturedVoice
)

type Role string

const (
	RoleAI   Role = "ai"
	RoleUser Role = "user"
)

// Message is one line of the interview transcript.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

type Controller struct {
	rec           Recorder
	logger        *zap.Logger
	redirectDelay time.Duration
	onComplete    func(models.Feedback)

	mu         sync.Mutex
	interview  *models.Interview
	phase      Phase
	index      int
	answers    []string
	capturedBy CapturedBy
	feedback   *models.Feedback
	transcript []Message
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithRedirectDelay sets how long a UI should keep the completion notice up
// before moving on.
func WithRedirectDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.redirectDelay = d
		}
	}
}

// OnComplete registers fn to receive the feedback once the interview completes.
func OnComplete(fn func(models.Feedback)) Option {
	return func(c *Controller) { c.onComplete = fn }
}

func NewController(rec Recorder, opts ...Option) *Controller {
	c := &Controller{
		rec:           rec,
		logger:        zap.NewNop(),
		redirectDelay: DefaultRedirectDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the interview and restores previously saved answers into the
// buffer. A completed interview loads straight into Completed.
func (c *Controller) Load(ctx context.Context, id uuid.UUID) error {
	iv, err := c.rec.GetInterview(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("load interview %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("load interview %s: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.interview = iv
	c.index = 0
	c.capturedBy = CapturedNone
	c.feedback = iv.Feedback
	c.answers = make([]string, len(iv.Questions))
	c.transcript = nil
	for i, qa := range iv.Questions {
		if qa.Answer != nil {
			c.answers[i] = *qa.Answer
		}
	}

	switch iv.Status {
	case models.StatusCompleted:
		c.phase = Completed
	case models.StatusInProgress:
		c.phase = InProgress
	default:
		c.phase = NotStarted
	}
	if c.phase != Completed && len(iv.Questions) > 0 {
		c.addMessage(RoleAI, iv.Questions[0].Question)
	}

	c.logger.Debug("interview loaded",
		zap.String("interview_id", id.String()),
		zap.String("phase", c.phase.String()),
		zap.Int("questions", len(iv.Questions)),
	)
	return nil
}

// Start marks the interview in progress. Starting an interview that is
// already in progress is a no-op.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkActive(); err != nil {
		return err
	}
	if c.phase == InProgress {
		return nil
	}
	if err := c.rec.UpdateStatus(ctx, c.interview.ID, models.StatusInProgress); err != nil {
		return fmt.Errorf("start interview: %w", err)
	}
	c.phase = InProgress
	return nil
}

// SetAnswer replaces the buffered answer for the current question with
// typed text. Nothing is persisted until Advance.
func (c *Controller) SetAnswer(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkActive(); err != nil {
		return err
	}
	c.answers[c.index] = text
	c.capturedBy = CapturedManual
	return nil
}

// VoiceAnswer buffers a recognized transcript for the current question and
// saves it immediately. On a save failure the buffer keeps the text and is
// treated as a typed answer, so the next Advance saves it.
func (c *Controller) VoiceAnswer(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkActive(); err != nil {
		return err
	}
	c.answers[c.index] = text
	if err := c.rec.SaveAnswer(ctx, c.interview.ID, c.index, text); err != nil {
		c.capturedBy = CapturedManual
		return fmt.Errorf("save voice answer %d: %w", c.index, err)
	}
	c.capturedBy = CapturedVoice
	c.addMessage(RoleUser, text)
	return nil
}

// Advance persists the buffered answer (unless voice already saved it) and
// moves to the next question. On the last question it completes the
// interview and reports done.
func (c *Controller) Advance(ctx context.Context) (bool, error) {
	c.mu.Lock()

	if err := c.checkActive(); err != nil {
		c.mu.Unlock()
		return false, err
	}

	answer := c.answers[c.index]
	if strings.TrimSpace(answer) != "" && c.capturedBy != CapturedVoice {
		if err := c.rec.SaveAnswer(ctx, c.interview.ID, c.index, answer); err != nil {
			c.mu.Unlock()
			return false, fmt.Errorf("save answer %d: %w", c.index, err)
		}
		c.addMessage(RoleUser, answer)
	}

	if c.index == len(c.answers)-1 {
		c.mu.Unlock()
		if _, err := c.Complete(ctx); err != nil {
			return false, err
		}
		return true, nil
	}

	c.index++
	c.capturedBy = CapturedNone
	c.addMessage(RoleAI, c.interview.Questions[c.index].Question)
	c.mu.Unlock()
	return false, nil
}

// Retreat moves back one question without persisting anything. The buffered
// answer of that question becomes current again.
func (c *Controller) Retreat() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.interview == nil || c.phase == Completed || c.phase == Completing {
		return
	}
	if c.index > 0 {
		c.index--
	}
	c.capturedBy = CapturedNone
}

// Complete marks the interview in progress, asks the recorder to compute and
// store the feedback and notifies the OnComplete callback.
func (c *Controller) Complete(ctx context.Context) (*models.Feedback, error) {
	c.mu.Lock()
	if err := c.checkActive(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	prev := c.phase
	c.phase = Completing
	id := c.interview.ID
	c.mu.Unlock()

	if prev != InProgress {
		if err := c.rec.UpdateStatus(ctx, id, models.StatusInProgress); err != nil {
			c.setPhase(prev)
			return nil, fmt.Errorf("complete interview: %w", err)
		}
	}
	feedback, err := c.rec.CompleteInterview(ctx, id)
	if err != nil {
		c.setPhase(InProgress)
		c.logger.Warn("interview completion failed", zap.String("interview_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("complete interview: %w", err)
	}

	c.mu.Lock()
	c.phase = Completed
	c.feedback = feedback
	c.interview.Status = models.StatusCompleted
	c.mu.Unlock()

	c.logger.Info("interview completed",
		zap.String("interview_id", id.String()),
		zap.Int("rating", feedback.Rating),
	)
	if c.onComplete != nil {
		c.onComplete(*feedback)
	}
	return feedback, nil
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

// StartVoice hands the questions from the current index onwards to engine.
// Every transcript is saved as a voice answer and followed by Advance. A
// failure stops the engine so its position never runs ahead of the buffer.
func (c *Controller) StartVoice(ctx context.Context, engine VoiceEngine) error {
	c.mu.Lock()
	if err := c.checkActive(); err != nil {
		c.mu.Unlock()
		return err
	}
	questions := make([]string, 0, len(c.interview.Questions)-c.index)
	for _, qa := range c.interview.Questions[c.index:] {
		questions = append(questions, qa.Question)
	}
	c.mu.Unlock()

	return engine.StartInterview(ctx, questions, func(_ int, transcript string) {
		if err := c.VoiceAnswer(ctx, transcript); err != nil {
			c.logger.Warn("voice answer not saved", zap.Error(err))
			engine.StopInterview()
			return
		}
		if _, err := c.Advance(ctx); err != nil {
			c.logger.Warn("advance after voice answer failed", zap.Error(err))
			engine.StopInterview()
		}
	})
}

func (c *Controller) checkActive() error {
	if c.interview == nil {
		return ErrNotLoaded
	}
	if c.phase == Completed || c.phase == Completing {
		return ErrCompleted
	}
	if len(c.answers) == 0 {
		return fmt.Errorf("interview %s has no questions", c.interview.ID)
	}
	return nil
}

func (c *Controller) addMessage(role Role, text string) {
	c.transcript = append(c.transcript, Message{Role: role, Text: text})
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

func (c *Controller) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.answers)
}

// CurrentQuestion returns the question at the current index, or "" when
// nothing is loaded.
func (c *Controller) CurrentQuestion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.interview == nil || c.index >= len(c.interview.Questions) {
		return ""
	}
	return c.interview.Questions[c.index].Question
}

// CurrentAnswer returns the buffered answer at the current index.
func (c *Controller) CurrentAnswer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index >= len(c.answers) {
		return ""
	}
	return c.answers[c.index]
}

func (c *Controller) CapturedBy() CapturedBy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capturedBy
}

// Answers returns a copy of the answer buffer.
func (c *Controller) Answers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.answers...)
}

// Progress returns the position of the current question as a percentage.
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.answers) == 0 {
		return 0
	}
	return float64(c.index+1) / float64(len(c.answers)) * 100
}

// Transcript returns the conversation so far in order.
func (c *Controller) Transcript() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.transcript...)
}

func (c *Controller) Feedback() *models.Feedback {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feedback
}

func (c *Controller) RedirectDelay() time.Duration {
	return c.redirectDelay
}
