package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/mockview/internal/api/response"
	"github.com/kiranshivaraju/mockview/internal/interview"
	"github.com/kiranshivaraju/mockview/internal/store"
	"github.com/kiranshivaraju/mockview/pkg/models"
	"go.uber.org/zap"
)

// Interviews defines the interview operations the handlers depend on.
// *interview.Service satisfies it.
type Interviews interface {
	Create(ctx context.Context, userID uuid.UUID, req interview.CreateRequest) (*models.Interview, error)
	Get(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Interview, error)
	List(ctx context.Context, userID uuid.UUID, page, limit int) ([]*models.Interview, int, store.InterviewFilter, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, userID uuid.UUID, status models.Status) error
	SaveAnswer(ctx context.Context, id uuid.UUID, userID uuid.UUID, index int, answer string) error
	ComputeFeedback(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Feedback, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	DeleteMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error)
}

var _ Interviews = (*interview.Service)(nil)

// NewCreateInterviewHandler returns an http.HandlerFunc for POST /api/v1/interviews.
func NewCreateInterviewHandler(svc Interviews, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req interview.CreateRequest
		if !decodeBody(w, r, &req) {
			return
		}

		iv, err := svc.Create(r.Context(), userID, req)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		response.Created(w, iv)
	}
}

// NewListInterviewsHandler returns an http.HandlerFunc for GET /api/v1/interviews.
func NewListInterviewsHandler(svc Interviews, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		page, ok := queryInt(w, r, "page")
		if !ok {
			return
		}
		limit, ok := queryInt(w, r, "limit")
		if !ok {
			return
		}

		interviews, total, filter, err := svc.List(r.Context(), userID, page, limit)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		if interviews == nil {
			interviews = []*models.Interview{}
		}
		response.Collection(w, interviews, response.NewMeta(filter.Page, filter.Limit, total))
	}
}

// NewGetInterviewHandler returns an http.HandlerFunc for GET /api/v1/interviews/{id}.
func NewGetInterviewHandler(svc Interviews, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, ok := interviewID(w, r)
		if !ok {
			return
		}

		iv, err := svc.Get(r.Context(), id, userID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		response.JSON(w, iv)
	}
}

// NewUpdateStatusHandler returns an http.HandlerFunc for PATCH /api/v1/interviews/{id}/status.
func NewUpdateStatusHandler(svc Interviews, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, ok := interviewID(w, r)
		if !ok {
			return
		}

		var req struct {
			Status models.Status `json:"status"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if !req.Status.Valid() {
			response.Error(w, http.StatusBadRequest, "INVALID_STATUS",
				"status must be one of created, in-progress, completed", nil)
			return
		}

		if err := svc.UpdateStatus(r.Context(), id, userID, req.Status); err != nil {
			writeServiceError(w, logger, err)
			return
		}
		response.JSON(w, map[string]string{"id": id.String(), "status": string(req.Status)})
	}
}

// NewSaveAnswerHandler returns an http.HandlerFunc for PUT /api/v1/interviews/{id}/answers/{index}.
func NewSaveAnswerHandler(svc Interviews, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, ok := interviewID(w, r)
		if !ok {
			return
		}
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_INDEX", "index must be an integer", nil)
			return
		}

		var req struct {
			Answer string `json:"answer"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		if err := svc.SaveAnswer(r.Context(), id, userID, index, req.Answer); err != nil {
			writeServiceError(w, logger, err)
			return
		}
		response.JSON(w, map[string]any{"id": id.String(), "index": index, "answer": req.Answer})
	}
}

// NewFeedbackHandler returns an http.HandlerFunc for POST /api/v1/interviews/{id}/feedback.
func NewFeedbackHandler(svc Interviews, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, ok := interviewID(w, r)
		if !ok {
			return
		}

		feedback, err := svc.ComputeFeedback(r.Context(), id, userID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		response.JSON(w, feedback)
	}
}

// NewDeleteInterviewHandler returns an http.HandlerFunc for DELETE /api/v1/interviews/{id}.
func NewDeleteInterviewHandler(svc Interviews, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, ok := interviewID(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), id, userID); err != nil {
			writeServiceError(w, logger, err)
			return
		}
		response.NoContent(w)
	}
}

// NewBulkDeleteHandler returns an http.HandlerFunc for POST /api/v1/interviews/bulk-delete.
// Either every id is deleted or none is.
func NewBulkDeleteHandler(svc Interviews, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req struct {
			IDs []string `json:"ids"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		ids := make([]uuid.UUID, 0, len(req.IDs))
		for _, raw := range req.IDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_ID", "Invalid interview ID format",
					map[string]string{"id": raw})
				return
			}
			ids = append(ids, id)
		}

		n, err := svc.DeleteMany(r.Context(), userID, ids)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		response.JSON(w, map[string]int{"deleted": n})
	}
}

func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", name+" must be an integer", nil)
		return 0, false
	}
	return n, true
}
