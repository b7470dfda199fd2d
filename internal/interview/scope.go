package interview

import (
	"context"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mockview/pkg/models"
)

// UserScope binds the service to one user so callers that only know about
// interview ids, such as the session controller, can drive it in-process.
type UserScope struct {
	svc    *Service
	userID uuid.UUID
}

func (s *Service) ForUser(userID uuid.UUID) *UserScope {
	return &UserScope{svc: s, userID: userID}
}

func (u *UserScope) GetInterview(ctx context.Context, id uuid.UUID) (*models.Interview, error) {
	return u.svc.Get(ctx, id, u.userID)
}

func (u *UserScope) SaveAnswer(ctx context.Context, id uuid.UUID, index int, answer string) error {
	return u.svc.SaveAnswer(ctx, id, u.userID, index, answer)
}

func (u *UserScope) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) error {
	return u.svc.UpdateStatus(ctx, id, u.userID, status)
}

func (u *UserScope) CompleteInterview(ctx context.Context, id uuid.UUID) (*models.Feedback, error) {
	return u.svc.ComputeFeedback(ctx, id, u.userID)
}
