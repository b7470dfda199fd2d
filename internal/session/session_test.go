package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mockview/internal/interview"
	"github.com/kiranshivaraju/mockview/internal/session"
	"github.com/kiranshivaraju/mockview/internal/speech"
	"github.com/kiranshivaraju/mockview/internal/speech/mock"
	"github.com/kiranshivaraju/mockview/internal/store"
	"github.com/kiranshivaraju/mockview/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ session.Recorder = (*interview.UserScope)(nil)

type savedAnswer struct {
	index  int
	answer string
}

type fakeRecorder struct {
	mu        sync.Mutex
	interview *models.Interview
	getErr    error
	saveErr   error
	statusErr error
	doneErr   error

	saves     []savedAnswer
	statuses  []models.Status
	completes int
}

func newFakeRecorder(status models.Status, questions ...string) *fakeRecorder {
	iv := &models.Interview{ID: uuid.New(), Status: status}
	for _, q := range questions {
		iv.Questions = append(iv.Questions, models.QuestionAnswer{Question: q})
	}
	return &fakeRecorder{interview: iv}
}

func (f *fakeRecorder) GetInterview(_ context.Context, id uuid.UUID) (*models.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if id != f.interview.ID {
		return nil, store.ErrNotFound
	}
	cp := *f.interview
	cp.Questions = append([]models.QuestionAnswer(nil), f.interview.Questions...)
	return &cp, nil
}

func (f *fakeRecorder) SaveAnswer(_ context.Context, _ uuid.UUID, index int, answer string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves = append(f.saves, savedAnswer{index, answer})
	return nil
}

func (f *fakeRecorder) UpdateStatus(_ context.Context, _ uuid.UUID, status models.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return f.statusErr
	}
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeRecorder) CompleteInterview(_ context.Context, _ uuid.UUID) (*models.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.doneErr != nil {
		return nil, f.doneErr
	}
	f.completes++
	return &models.Feedback{Rating: 4, Feedback: "Good interview."}, nil
}

func (f *fakeRecorder) savedAnswers() []savedAnswer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]savedAnswer(nil), f.saves...)
}

func (f *fakeRecorder) statusUpdates() []models.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Status(nil), f.statuses...)
}

func (f *fakeRecorder) completeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completes
}

func loaded(t *testing.T, rec *fakeRecorder, opts ...session.Option) *session.Controller {
	t.Helper()
	c := session.NewController(rec, opts...)
	require.NoError(t, c.Load(context.Background(), rec.interview.ID))
	return c
}

func TestLoad_NotFound(t *testing.T) {
	rec := newFakeRecorder(models.StatusCreated, "Q1")
	c := session.NewController(rec)

	err := c.Load(context.Background(), uuid.New())
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.ErrorIs(t, c.SetAnswer("x"), session.ErrNotLoaded)
}

func TestLoad_OtherError(t *testing.T) {
	rec := newFakeRecorder(models.StatusCreated, "Q1")
	rec.getErr = errors.New("connection refused")
	c := session.NewController(rec)

	err := c.Load(context.Background(), rec.interview.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrNotFound)
}

func TestLoad_Phases(t *testing.T) {
	tests := []struct {
		status models.Status
		want   session.Phase
	}{
		{models.StatusCreated, session.NotStarted},
		{models.StatusInProgress, session.InProgress},
		{models.StatusCompleted, session.Completed},
	}
	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			c := loaded(t, newFakeRecorder(tc.status, "Q1", "Q2"))
			assert.Equal(t, tc.want, c.Phase())
		})
	}
}

func TestLoad_RestoresSavedAnswers(t *testing.T) {
	rec := newFakeRecorder(models.StatusInProgress, "Q1", "Q2", "Q3")
	first := "earlier answer"
	rec.interview.Questions[0].Answer = &first

	c := loaded(t, rec)

	assert.Equal(t, []string{"earlier answer", "", ""}, c.Answers())
	assert.Equal(t, "earlier answer", c.CurrentAnswer())
	assert.Equal(t, "Q1", c.CurrentQuestion())
	assert.Equal(t, 3, c.Total())
	assert.Equal(t, []session.Message{{Role: session.RoleAI, Text: "Q1"}}, c.Transcript())
}

func TestLoad_CompletedKeepsFeedback(t *testing.T) {
	rec := newFakeRecorder(models.StatusCompleted, "Q1")
	rec.interview.Feedback = &models.Feedback{Rating: 2}

	c := loaded(t, rec)

	require.NotNil(t, c.Feedback())
	assert.Equal(t, 2, c.Feedback().Rating)
	assert.Empty(t, c.Transcript())
	assert.ErrorIs(t, c.SetAnswer("late"), session.ErrCompleted)
	_, err := c.Advance(context.Background())
	assert.ErrorIs(t, err, session.ErrCompleted)
}

func TestStart(t *testing.T) {
	rec := newFakeRecorder(models.StatusCreated, "Q1")
	c := loaded(t, rec)

	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Start(context.Background()))

	assert.Equal(t, session.InProgress, c.Phase())
	assert.Equal(t, []models.Status{models.StatusInProgress}, rec.statusUpdates())
}

func TestStart_Error(t *testing.T) {
	rec := newFakeRecorder(models.StatusCreated, "Q1")
	rec.statusErr = errors.New("boom")
	c := loaded(t, rec)

	require.Error(t, c.Start(context.Background()))
	assert.Equal(t, session.NotStarted, c.Phase())
}

func TestAdvance_PersistsManualAnswers(t *testing.T) {
	rec := newFakeRecorder(models.StatusInProgress, "Q1", "Q2", "Q3")
	c := loaded(t, rec)
	ctx := context.Background()

	require.NoError(t, c.SetAnswer("a1"))
	assert.Equal(t, session.CapturedManual, c.CapturedBy())
	done, err := c.Advance(ctx)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 1, c.Index())
	assert.Equal(t, session.CapturedNone, c.CapturedBy())

	// Blank answers are skipped, not persisted.
	require.NoError(t, c.SetAnswer("   "))
	done, err = c.Advance(ctx)
	require.NoError(t, err)
	assert.False(t, done)

	assert.Equal(t, []savedAnswer{{0, "a1"}}, rec.savedAnswers())
	assert.InDelta(t, 100.0, c.Progress(), 0.001)
}

func TestAdvance_LastQuestionCompletes(t *testing.T) {
	rec := newFakeRecorder(models.StatusInProgress, "Q1", "Q2")
	var got *models.Feedback
	c := loaded(t, rec, session.OnComplete(func(f models.Feedback) { got = &f }))
	ctx := context.Background()

	require.NoError(t, c.SetAnswer("a1"))
	_, err := c.Advance(ctx)
	require.NoError(t, err)
	require.NoError(t, c.SetAnswer("a2"))
	done, err := c.Advance(ctx)
	require.NoError(t, err)
	assert.True(t, done)

	assert.Equal(t, session.Completed, c.Phase())
	assert.Equal(t, 1, rec.completeCalls())
	require.NotNil(t, got)
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, got, c.Feedback())
	assert.Equal(t, []session.Message{
		{Role: session.RoleAI, Text: "Q1"},
		{Role: session.RoleUser, Text: "a1"},
		{Role: session.RoleAI, Text: "Q2"},
		{Role: session.RoleUser, Text: "a2"},
	}, c.Transcript())
}

func TestAdvance_SaveErrorKeepsBuffer(t *testing.T) {
	rec := newFakeRecorder(models.StatusInProgress, "Q1", "Q2")
	rec.saveErr = errors.New("server unavailable")
	c := loaded(t, rec)

	require.NoError(t, c.SetAnswer("keep me"))
	done, err := c.Advance(context.Background())
	require.Error(t, err)
	assert.False(t, done)
	assert.Equal(t, 0, c.Index())
	assert.Equal(t, "keep me", c.CurrentAnswer())

	rec.mu.Lock()
	rec.saveErr = nil
	rec.mu.Unlock()

	_, err = c.Advance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []savedAnswer{{0, "keep me"}}, rec.savedAnswers())
}

func TestRetreat(t *testing.T) {
	rec := newFakeRecorder(models.StatusInProgress, "Q1", "Q2")
	c := loaded(t, rec)

	c.Retreat()
	assert.Equal(t, 0, c.Index())

	require.NoError(t, c.SetAnswer("first"))
	_, err := c.Advance(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.SetAnswer("second draft"))

	c.Retreat()
	assert.Equal(t, 0, c.Index())
	assert.Equal(t, "first", c.CurrentAnswer())
	assert.Equal(t, []string{"first", "second draft"}, c.Answers())
	assert.Len(t, rec.savedAnswers(), 1)
}

func TestVoiceAnswer_NotSavedTwice(t *testing.T) {
	rec := newFakeRecorder(models.StatusInProgress, "Q1", "Q2")
	c := loaded(t, rec)
	ctx := context.Background()

	require.NoError(t, c.VoiceAnswer(ctx, "spoken"))
	assert.Equal(t, session.CapturedVoice, c.CapturedBy())
	_, err := c.Advance(ctx)
	require.NoError(t, err)

	assert.Equal(t, []savedAnswer{{0, "spoken"}}, rec.savedAnswers())
}

func TestVoiceAnswer_ThenTypedEditIsSaved(t *testing.T) {
	rec := newFakeRecorder(models.StatusInProgress, "Q1", "Q2")
	c := loaded(t, rec)
	ctx := context.Background()

	require.NoError(t, c.VoiceAnswer(ctx, "spoken"))
	require.NoError(t, c.SetAnswer("spoken, then corrected"))
	_, err := c.Advance(ctx)
	require.NoError(t, err)

	assert.Equal(t, []savedAnswer{{0, "spoken"}, {0, "spoken, then corrected"}}, rec.savedAnswers())
}

func TestVoiceAnswer_SaveErrorKeepsBuffer(t *testing.T) {
	rec := newFakeRecorder(models.StatusInProgress, "Q1", "Q2")
	rec.saveErr = errors.New("offline")
	c := loaded(t, rec)
	ctx := context.Background()

	require.Error(t, c.VoiceAnswer(ctx, "spoken answer"))
	assert.Equal(t, "spoken answer", c.CurrentAnswer())
	assert.Equal(t, session.CapturedManual, c.CapturedBy())
	assert.Empty(t, rec.savedAnswers())

	rec.mu.Lock()
	rec.saveErr = nil
	rec.mu.Unlock()

	done, err := c.Advance(ctx)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 1, c.Index())
	assert.Equal(t, []savedAnswer{{0, "spoken answer"}}, rec.savedAnswers())
}

func TestComplete_FromNotStartedMarksInProgressFirst(t *testing.T) {
	rec := newFakeRecorder(models.StatusCreated, "Q1")
	c := loaded(t, rec)

	f, err := c.Complete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, f.Rating)
	assert.Equal(t, []models.Status{models.StatusInProgress}, rec.statusUpdates())
	assert.Equal(t, session.Completed, c.Phase())

	_, err = c.Complete(context.Background())
	assert.ErrorIs(t, err, session.ErrCompleted)
	assert.Equal(t, 1, rec.completeCalls())
}

func TestComplete_Failure(t *testing.T) {
	rec := newFakeRecorder(models.StatusInProgress, "Q1")
	rec.doneErr = errors.New("feedback failed")
	called := false
	c := loaded(t, rec, session.OnComplete(func(models.Feedback) { called = true }))

	_, err := c.Complete(context.Background())
	require.Error(t, err)
	assert.Equal(t, session.InProgress, c.Phase())
	assert.False(t, called)
	assert.Nil(t, c.Feedback())
}

func TestRedirectDelay(t *testing.T) {
	rec := newFakeRecorder(models.StatusCreated, "Q1")

	assert.Equal(t, session.DefaultRedirectDelay, session.NewController(rec).RedirectDelay())
	c := session.NewController(rec, session.WithRedirectDelay(5*time.Second))
	assert.Equal(t, 5*time.Second, c.RedirectDelay())
}

func TestProgress_Unloaded(t *testing.T) {
	c := session.NewController(newFakeRecorder(models.StatusCreated))
	assert.Zero(t, c.Progress())
	assert.Empty(t, c.CurrentQuestion())
}

func TestStartVoice_RunsToCompletion(t *testing.T) {
	rec := newFakeRecorder(models.StatusInProgress, "Q1", "Q2", "Q3")
	c := loaded(t, rec)
	ctx := context.Background()

	// Answer the first question by hand, then let voice take over.
	require.NoError(t, c.SetAnswer("typed"))
	_, err := c.Advance(ctx)
	require.NoError(t, err)

	synth := &mock.Synthesizer{}
	engine := speech.NewEngine(synth, mock.NewScriptedRecognizer("v2", "v3"), speech.WithDelays(0, 0))

	require.NoError(t, c.StartVoice(ctx, engine))
	require.NoError(t, engine.Wait())

	assert.Equal(t, []string{"Q2", "Q3"}, synth.Spoken())
	assert.Equal(t, []savedAnswer{{0, "typed"}, {1, "v2"}, {2, "v3"}}, rec.savedAnswers())
	assert.Equal(t, session.Completed, c.Phase())
	assert.Equal(t, 1, rec.completeCalls())
}

func TestStartVoice_Completed(t *testing.T) {
	c := loaded(t, newFakeRecorder(models.StatusCompleted, "Q1"))
	engine := speech.NewEngine(&mock.Synthesizer{}, mock.NewScriptedRecognizer("x"))

	assert.ErrorIs(t, c.StartVoice(context.Background(), engine), session.ErrCompleted)
}

func TestStartVoice_Unavailable(t *testing.T) {
	c := loaded(t, newFakeRecorder(models.StatusInProgress, "Q1"))
	engine := speech.NewEngine(&mock.Synthesizer{}, &mock.Recognizer{Unavailable: true})

	assert.ErrorIs(t, c.StartVoice(context.Background(), engine), speech.ErrUnavailable)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "not-started", session.NotStarted.String())
	assert.Equal(t, "in-progress", session.InProgress.String())
	assert.Equal(t, "completing", session.Completing.String())
	assert.Equal(t, "completed", session.Completed.String())
}

func TestStartVoice_SaveFailureStopsEngine(t *testing.T) {
	rec := newFakeRecorder(models.StatusInProgress, "Q1", "Q2")
	rec.saveErr = errors.New("offline")
	c := loaded(t, rec)

	synth := &mock.Synthesizer{}
	engine := speech.NewEngine(synth, mock.NewScriptedRecognizer("v1", "v2"), speech.WithDelays(0, 0))

	require.NoError(t, c.StartVoice(context.Background(), engine))
	assert.ErrorIs(t, engine.Wait(), speech.ErrStopped)

	assert.Equal(t, []string{"Q1"}, synth.Spoken())
	assert.Equal(t, 0, c.Index())
	assert.Equal(t, "v1", c.CurrentAnswer())
	assert.Equal(t, session.CapturedManual, c.CapturedBy())
	assert.Equal(t, session.InProgress, c.Phase())
}
