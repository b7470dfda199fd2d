package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mockview/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")
var ErrInvalidTransition = errors.New("invalid status transition")
var ErrIndexOutOfRange = errors.New("question index out of range")

// Store is the data access interface. All database operations go through here.
// Interview operations are scoped to the owning user; a record owned by
// someone else is reported as ErrNotFound.
type Store interface {
	Ping(ctx context.Context) error

	FindOrCreateUser(ctx context.Context, user *models.User) (*models.User, bool, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error

	CreateInterview(ctx context.Context, interview *models.Interview) error
	GetInterview(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Interview, error)
	ListInterviews(ctx context.Context, filter InterviewFilter) ([]*models.Interview, int, error)
	UpdateInterviewStatus(ctx context.Context, id uuid.UUID, userID uuid.UUID, status models.Status) error
	SaveAnswer(ctx context.Context, id uuid.UUID, userID uuid.UUID, index int, answer string) error
	CompleteInterview(ctx context.Context, id uuid.UUID, userID uuid.UUID, feedback models.Feedback) error
	DeleteInterview(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	DeleteInterviews(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error)
}

type InterviewFilter struct {
	UserID uuid.UUID
	Page   int
	Limit  int
}

// Normalize clamps pagination to page >= 1 and 1 <= limit <= 100.
func (f InterviewFilter) Normalize() InterviewFilter {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	return f
}
