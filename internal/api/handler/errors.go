package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/mockview/internal/api/middleware"
	"github.com/kiranshivaraju/mockview/internal/api/response"
	"github.com/kiranshivaraju/mockview/internal/interview"
	"github.com/kiranshivaraju/mockview/internal/store"
	"go.uber.org/zap"
)

// writeServiceError maps service and store errors onto the API error codes.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *interview.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			"One or more fields are invalid", verr.Fields)
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Interview not found", nil)
	case errors.Is(err, store.ErrInvalidTransition):
		response.Error(w, http.StatusConflict, "INVALID_TRANSITION", err.Error(), nil)
	case errors.Is(err, store.ErrIndexOutOfRange):
		response.Error(w, http.StatusUnprocessableEntity, "INDEX_OUT_OF_RANGE",
			"Question index is out of range", nil)
	case errors.Is(err, interview.ErrEmptyAnswer):
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "answer must not be empty", nil)
	case errors.Is(err, interview.ErrBulkDeleteSize):
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	default:
		logger.Error("request failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}

func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := mw.GetUserID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
	}
	return userID, ok
}

func interviewID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_ID", "Invalid interview ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return false
	}
	return true
}
