package handler

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/mockview/internal/api/middleware"
	"github.com/kiranshivaraju/mockview/internal/api/response"
	"github.com/kiranshivaraju/mockview/internal/store"
	"github.com/kiranshivaraju/mockview/pkg/models"
	"go.uber.org/zap"
)

const defaultKeyName = "default"

// UserStore is the part of the store the user handlers need.
type UserStore interface {
	FindOrCreateUser(ctx context.Context, user *models.User) (*models.User, bool, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
}

// KeyGenerator returns a raw key, its prefix and its hash. mw.GenerateKey
// is the production implementation.
type KeyGenerator func() (raw, prefix, hash string, err error)

type registerResponse struct {
	User    *models.User `json:"user"`
	APIKey  string       `json:"api_key"`
	Created bool         `json:"created"`
}

// NewRegisterHandler returns an http.HandlerFunc for POST /api/v1/users.
// The user is found or created by email and a fresh API key is issued;
// the raw key appears only in this response.
func NewRegisterHandler(s UserStore, gen KeyGenerator, logger *zap.Logger) http.HandlerFunc {
	if gen == nil {
		gen = mw.GenerateKey
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			ImageURL string `json:"image_url"`
			KeyName  string `json:"key_name"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		email := strings.TrimSpace(req.Email)
		if email == "" {
			response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "One or more fields are invalid",
				map[string]string{"email": "is required"})
			return
		}
		if _, err := mail.ParseAddress(email); err != nil {
			response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "One or more fields are invalid",
				map[string]string{"email": "must be a valid email address"})
			return
		}

		now := time.Now().UTC()
		user, created, err := s.FindOrCreateUser(r.Context(), &models.User{
			ID:        uuid.New(),
			Name:      strings.TrimSpace(req.Name),
			Email:     email,
			ImageURL:  strings.TrimSpace(req.ImageURL),
			CreatedAt: now,
		})
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		raw, prefix, hash, err := gen()
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}

		keyName := strings.TrimSpace(req.KeyName)
		if keyName == "" {
			keyName = defaultKeyName
		}
		if err := s.CreateAPIKey(r.Context(), &models.APIKey{
			ID:        uuid.New(),
			UserID:    user.ID,
			Name:      keyName,
			KeyHash:   hash,
			KeyPrefix: prefix,
			CreatedAt: now,
		}); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				response.Error(w, http.StatusConflict, "DUPLICATE_KEY", "API key could not be issued, retry", nil)
				return
			}
			writeServiceError(w, logger, err)
			return
		}

		logger.Info("api key issued",
			zap.String("user_id", user.ID.String()),
			zap.String("key_prefix", prefix),
			zap.Bool("user_created", created),
		)

		resp := registerResponse{User: user, APIKey: raw, Created: created}
		if created {
			response.Created(w, resp)
			return
		}
		response.JSON(w, resp)
	}
}

// NewMeHandler returns an http.HandlerFunc for GET /api/v1/me.
func NewMeHandler(s UserStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		user, err := s.GetUser(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
				return
			}
			writeServiceError(w, logger, err)
			return
		}
		response.JSON(w, user)
	}
}
