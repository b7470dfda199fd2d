package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mockview/internal/store"
	"github.com/kiranshivaraju/mockview/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- mock UserStore ---

type mockUserStore struct {
	users   map[string]*models.User
	keys    []*models.APIKey
	keyErr  error
	findErr error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*models.User)}
}

func (m *mockUserStore) FindOrCreateUser(_ context.Context, u *models.User) (*models.User, bool, error) {
	if m.findErr != nil {
		return nil, false, m.findErr
	}
	email := strings.ToLower(u.Email)
	if existing, ok := m.users[email]; ok {
		return existing, false, nil
	}
	cp := *u
	cp.Email = email
	m.users[email] = &cp
	return &cp, true, nil
}

func (m *mockUserStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	if m.keyErr != nil {
		return m.keyErr
	}
	m.keys = append(m.keys, key)
	return nil
}

var _ UserStore = (*mockUserStore)(nil)

func fixedKey() (string, string, string, error) {
	return "mv_0123456789abcdef", "mv_01234", "hashed", nil
}

// --- register ---

func TestRegister_201_NewUser(t *testing.T) {
	us := newMockUserStore()
	h := NewRegisterHandler(us, fixedKey, zap.NewNop())

	body := map[string]any{"name": "Ada", "email": "Ada@Example.com", "image_url": "https://img/ada.png"}
	rec := serve(t, http.MethodPost, "/api/v1/users", h, "/api/v1/users", body, false)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "hashed")
	data := parseData(t, rec)
	assert.Equal(t, "mv_0123456789abcdef", data["api_key"])
	assert.Equal(t, true, data["created"])
	user := data["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", user["email"])

	require.Len(t, us.keys, 1)
	assert.Equal(t, "mv_01234", us.keys[0].KeyPrefix)
	assert.Equal(t, "hashed", us.keys[0].KeyHash)
	assert.Equal(t, defaultKeyName, us.keys[0].Name)
}

func TestRegister_200_ExistingUserGetsNewKey(t *testing.T) {
	us := newMockUserStore()
	h := NewRegisterHandler(us, fixedKey, zap.NewNop())

	first := serve(t, http.MethodPost, "/api/v1/users", h, "/api/v1/users",
		map[string]any{"name": "Ada", "email": "ada@example.com"}, false)
	require.Equal(t, http.StatusCreated, first.Code)

	second := serve(t, http.MethodPost, "/api/v1/users", h, "/api/v1/users",
		map[string]any{"name": "Someone Else", "email": "ADA@example.com", "key_name": "laptop"}, false)
	require.Equal(t, http.StatusOK, second.Code)

	data := parseData(t, second)
	assert.Equal(t, false, data["created"])
	assert.Equal(t, "Ada", data["user"].(map[string]any)["name"])
	require.Len(t, us.keys, 2)
	assert.Equal(t, "laptop", us.keys[1].Name)
	assert.Equal(t, us.keys[0].UserID, us.keys[1].UserID)
}

func TestRegister_422_InvalidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{"missing", ""},
		{"blank", "   "},
		{"malformed", "not-an-email"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			us := newMockUserStore()
			h := NewRegisterHandler(us, fixedKey, zap.NewNop())

			rec := serve(t, http.MethodPost, "/api/v1/users", h, "/api/v1/users",
				map[string]any{"email": tc.email}, false)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			code, details := parseErr(t, rec)
			assert.Equal(t, "VALIDATION_ERROR", code)
			assert.Contains(t, details, "email")
			assert.Empty(t, us.users)
		})
	}
}

func TestRegister_500_StoreFailure(t *testing.T) {
	us := newMockUserStore()
	us.findErr = errors.New("db down")
	h := NewRegisterHandler(us, fixedKey, zap.NewNop())

	rec := serve(t, http.MethodPost, "/api/v1/users", h, "/api/v1/users",
		map[string]any{"email": "ada@example.com"}, false)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRegister_409_DuplicateKey(t *testing.T) {
	us := newMockUserStore()
	us.keyErr = store.ErrDuplicateKey
	h := NewRegisterHandler(us, fixedKey, zap.NewNop())

	rec := serve(t, http.MethodPost, "/api/v1/users", h, "/api/v1/users",
		map[string]any{"email": "ada@example.com"}, false)

	assert.Equal(t, http.StatusConflict, rec.Code)
	code, _ := parseErr(t, rec)
	assert.Equal(t, "DUPLICATE_KEY", code)
}

func TestRegister_DefaultGeneratorIssuesRealKey(t *testing.T) {
	us := newMockUserStore()
	h := NewRegisterHandler(us, nil, zap.NewNop())

	rec := serve(t, http.MethodPost, "/api/v1/users", h, "/api/v1/users",
		map[string]any{"email": "ada@example.com"}, false)

	require.Equal(t, http.StatusCreated, rec.Code)
	raw := parseData(t, rec)["api_key"].(string)
	assert.True(t, strings.HasPrefix(raw, "mv_"))
	require.Len(t, us.keys, 1)
	assert.Equal(t, raw[:8], us.keys[0].KeyPrefix)
}

// --- me ---

func TestMe_200(t *testing.T) {
	us := newMockUserStore()
	us.users["ada@example.com"] = &models.User{
		ID: testUserID, Name: "Ada", Email: "ada@example.com", CreatedAt: time.Now().UTC(),
	}

	rec := serve(t, http.MethodGet, "/api/v1/me", NewMeHandler(us, zap.NewNop()), "/api/v1/me", nil, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada", parseData(t, rec)["name"])
}

func TestMe_404_UnknownUser(t *testing.T) {
	rec := serve(t, http.MethodGet, "/api/v1/me", NewMeHandler(newMockUserStore(), zap.NewNop()), "/api/v1/me", nil, true)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
