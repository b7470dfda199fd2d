// Package interview implements the interview lifecycle on top of the store:
// creation through the question generator, answer saving, status changes,
// feedback and deletion. Reads go through a best-effort cache that every
// mutation invalidates.
package interview

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mockview/internal/cache"
	"github.com/kiranshivaraju/mockview/internal/generator"
	"github.com/kiranshivaraju/mockview/internal/store"
	"github.com/kiranshivaraju/mockview/pkg/models"
	"go.uber.org/zap"
)

const (
	MaxBulkDelete = 100

	minTitleLen       = 2
	maxTitleLen       = 80
	minDescriptionLen = 20

	defaultResumeTitle = "Resume-based Interview"
	defaultCacheTTL    = 5 * time.Minute
)

var (
	defaultResumeSkills     = []string{"general skills"}
	defaultResumeExperience = []string{"work experience"}
	defaultResumeEducation  = []string{"education background"}
)

// Store is the subset of store.Store the service needs.
type Store interface {
	CreateInterview(ctx context.Context, interview *models.Interview) error
	GetInterview(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Interview, error)
	ListInterviews(ctx context.Context, filter store.InterviewFilter) ([]*models.Interview, int, error)
	UpdateInterviewStatus(ctx context.Context, id uuid.UUID, userID uuid.UUID, status models.Status) error
	SaveAnswer(ctx context.Context, id uuid.UUID, userID uuid.UUID, index int, answer string) error
	CompleteInterview(ctx context.Context, id uuid.UUID, userID uuid.UUID, feedback models.Feedback) error
	DeleteInterview(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	DeleteInterviews(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error)
}

// Cache is the subset of cache.Cache the service needs.
type Cache interface {
	SetInterview(ctx context.Context, interview *models.Interview, ttl time.Duration) error
	GetInterview(ctx context.Context, id uuid.UUID) (*models.Interview, bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// Metrics receives domain events. *metrics.Metrics satisfies it.
type Metrics interface {
	InterviewCreated(t models.InterviewType)
	AnswerSaved()
	InterviewCompleted(rating int)
}

// CreateRequest is the input of Create. Skills is a free-form list used to
// seed resume interviews.
type CreateRequest struct {
	Type        models.InterviewType `json:"type"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	ResumeURL   string               `json:"resume_url"`
	Skills      string               `json:"skills"`
}

type Service struct {
	store        Store
	cache        Cache
	metrics      Metrics
	logger       *zap.Logger
	cacheTTL     time.Duration
	maxQuestions int
	rng          *rand.Rand
	now          func() time.Time
}

type Option func(*Service)

func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMaxQuestions caps generated interviews below generator.MaxQuestions.
func WithMaxQuestions(n int) Option {
	return func(s *Service) {
		if n > 0 && n < s.maxQuestions {
			s.maxQuestions = n
		}
	}
}

// WithRand makes question order reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st Store, opts ...Option) *Service {
	s := &Service{
		store:        st,
		cache:        noopCache{},
		metrics:      noopMetrics{},
		logger:       zap.NewNop(),
		cacheTTL:     defaultCacheTTL,
		maxQuestions: generator.MaxQuestions,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates req, generates the questions and stores a new interview in
// status created.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*models.Interview, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.ResumeURL = strings.TrimSpace(req.ResumeURL)

	if err := validateCreate(&req); err != nil {
		return nil, err
	}

	var seed generator.Seed
	iv := &models.Interview{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      req.Type,
		Title:     req.Title,
		Status:    models.StatusCreated,
		CreatedAt: s.now().UTC(),
	}

	switch req.Type {
	case models.InterviewTypeJobDescription:
		seed.Job = generator.JobSeed{Title: req.Title, Description: req.Description}
		iv.Description = &req.Description
	case models.InterviewTypeResume:
		skills := generator.ParseSkills(req.Skills)
		if len(skills) == 0 {
			skills = defaultResumeSkills
		}
		seed.Resume = generator.ResumeSeed{
			Skills:     skills,
			Experience: defaultResumeExperience,
			Education:  defaultResumeEducation,
		}
		iv.ResumeURL = &req.ResumeURL
		if req.Description != "" {
			iv.Description = &req.Description
		}
	}

	questions := generator.GenerateQuestions(req.Type, seed, s.rng)
	if len(questions) > s.maxQuestions {
		questions = questions[:s.maxQuestions]
	}
	iv.Questions = make([]models.QuestionAnswer, len(questions))
	for i, q := range questions {
		iv.Questions[i] = models.QuestionAnswer{Question: q.Question, Category: q.Category}
	}

	if err := s.store.CreateInterview(ctx, iv); err != nil {
		return nil, err
	}

	s.metrics.InterviewCreated(iv.Type)
	s.logger.Info("interview created",
		zap.String("interview_id", iv.ID.String()),
		zap.String("type", string(iv.Type)),
		zap.Int("questions", len(iv.Questions)),
	)
	s.cachePut(ctx, iv)
	return iv, nil
}

func validateCreate(req *CreateRequest) error {
	verr := &ValidationError{}

	switch req.Type {
	case models.InterviewTypeJobDescription:
		if n := utf8.RuneCountInString(req.Title); n < minTitleLen || n > maxTitleLen {
			verr.add("title", "must be between 2 and 80 characters")
		}
		if utf8.RuneCountInString(req.Description) < minDescriptionLen {
			verr.add("description", "must be at least 20 characters")
		}
	case models.InterviewTypeResume:
		if req.ResumeURL == "" {
			verr.add("resume_url", "is required for resume interviews")
		}
		if req.Title == "" {
			req.Title = defaultResumeTitle
		} else if utf8.RuneCountInString(req.Title) > maxTitleLen {
			verr.add("title", "must be at most 80 characters")
		}
	default:
		verr.add("type", "must be one of resume, job-description")
	}

	return verr.orNil()
}

// Get returns the interview owned by userID. A cached copy owned by someone
// else is ignored so ownership is always decided by the store.
func (s *Service) Get(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Interview, error) {
	cached, found, err := s.cache.GetInterview(ctx, id)
	if err != nil {
		s.logger.Warn("interview cache read failed", zap.String("interview_id", id.String()), zap.Error(err))
	}
	if found && cached.UserID == userID {
		return cached, nil
	}

	iv, err := s.store.GetInterview(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	s.cachePut(ctx, iv)
	return iv, nil
}

// List returns one page of the user's interviews, newest first, and the total count.
func (s *Service) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]*models.Interview, int, store.InterviewFilter, error) {
	filter := store.InterviewFilter{UserID: userID, Page: page, Limit: limit}.Normalize()
	interviews, total, err := s.store.ListInterviews(ctx, filter)
	if err != nil {
		return nil, 0, filter, err
	}
	return interviews, total, filter, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, userID uuid.UUID, status models.Status) error {
	if err := s.store.UpdateInterviewStatus(ctx, id, userID, status); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// SaveAnswer stores answer at index. Blank answers are rejected.
func (s *Service) SaveAnswer(ctx context.Context, id uuid.UUID, userID uuid.UUID, index int, answer string) error {
	if strings.TrimSpace(answer) == "" {
		return ErrEmptyAnswer
	}
	if err := s.store.SaveAnswer(ctx, id, userID, index, answer); err != nil {
		return err
	}
	s.metrics.AnswerSaved()
	s.invalidate(ctx, id)
	return nil
}

// ComputeFeedback scores the stored answers against the full question count
// and completes the interview.
func (s *Service) ComputeFeedback(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Feedback, error) {
	iv, err := s.store.GetInterview(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	feedback := generator.GenerateFeedback(generator.AnsweredPairs(iv.Questions), len(iv.Questions))
	if err := s.store.CompleteInterview(ctx, id, userID, feedback); err != nil {
		return nil, err
	}

	s.metrics.InterviewCompleted(feedback.Rating)
	s.logger.Info("interview completed",
		zap.String("interview_id", id.String()),
		zap.Int("rating", feedback.Rating),
		zap.Int("answered", iv.AnsweredCount()),
		zap.Int("questions", len(iv.Questions)),
	)
	s.invalidate(ctx, id)
	return &feedback, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	if err := s.store.DeleteInterview(ctx, id, userID); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// DeleteMany deletes all of ids or none of them.
func (s *Service) DeleteMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 || len(ids) > MaxBulkDelete {
		return 0, ErrBulkDeleteSize
	}
	n, err := s.store.DeleteInterviews(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, ids...)
	return n, nil
}

func (s *Service) cachePut(ctx context.Context, iv *models.Interview) {
	if err := s.cache.SetInterview(ctx, iv, s.cacheTTL); err != nil {
		s.logger.Warn("interview cache write failed", zap.String("interview_id", iv.ID.String()), zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, ids ...uuid.UUID) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cache.InterviewKey(id)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("interview cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

type noopCache struct{}

func (noopCache) SetInterview(context.Context, *models.Interview, time.Duration) error { return nil }
func (noopCache) GetInterview(context.Context, uuid.UUID) (*models.Interview, bool, error) {
	return nil, false, nil
}
func (noopCache) Delete(context.Context, ...string) error { return nil }

type noopMetrics struct{}

func (noopMetrics) InterviewCreated(models.InterviewType) {}
func (noopMetrics) AnswerSaved()                          {}
func (noopMetrics) InterviewCompleted(int)                {}
