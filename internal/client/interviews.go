package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mockview/internal/api/response"
	"github.com/kiranshivaraju/mockview/internal/interview"
	"github.com/kiranshivaraju/mockview/pkg/models"
)

// RegisterRequest identifies the user to find or create.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"image_url,omitempty"`
	KeyName  string `json:"key_name,omitempty"`
}

// Registration carries the raw API key, which the server shows only once.
type Registration struct {
	User    models.User `json:"user"`
	APIKey  string      `json:"api_key"`
	Created bool        `json:"created"`
}

// InterviewPage is one page of the caller's interviews, newest first.
type InterviewPage struct {
	Interviews []models.Interview
	Meta       response.PaginationMeta
}

func (c *Client) Health(ctx context.Context) error {
	var out map[string]any
	_, err := c.do(ctx, http.MethodGet, "/api/v1/health", nil, &out)
	return err
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Registration, error) {
	var out Registration
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/users", req, &out); err != nil {
		return nil, fmt.Errorf("register %s: %w", req.Email, err)
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateInterview(ctx context.Context, req interview.CreateRequest) (*models.Interview, error) {
	var out models.Interview
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/interviews", req, &out); err != nil {
		return nil, fmt.Errorf("create interview: %w", err)
	}
	return &out, nil
}

// ListInterviews fetches one page. Zero page or limit leaves the choice to
// the server.
func (c *Client) ListInterviews(ctx context.Context, page, limit int) (*InterviewPage, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/v1/interviews"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out []models.Interview
	meta, err := c.do(ctx, http.MethodGet, path, nil, &out)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	p := &InterviewPage{Interviews: out}
	if meta != nil {
		p.Meta = *meta
	}
	return p, nil
}

func (c *Client) GetInterview(ctx context.Context, id uuid.UUID) (*models.Interview, error) {
	var out models.Interview
	if _, err := c.do(ctx, http.MethodGet, interviewPath(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get interview %s: %w", id, err)
	}
	return &out, nil
}

func (c *Client) SaveAnswer(ctx context.Context, id uuid.UUID, index int, answer string) error {
	body := map[string]string{"answer": answer}
	path := fmt.Sprintf("%s/answers/%d", interviewPath(id), index)
	if _, err := c.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("save answer %d: %w", index, err)
	}
	return nil
}

func (c *Client) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) error {
	body := map[string]models.Status{"status": status}
	if _, err := c.do(ctx, http.MethodPatch, interviewPath(id)+"/status", body, nil); err != nil {
		return fmt.Errorf("update status to %s: %w", status, err)
	}
	return nil
}

// CompleteInterview asks the server to compute and store the feedback.
func (c *Client) CompleteInterview(ctx context.Context, id uuid.UUID) (*models.Feedback, error) {
	var out models.Feedback
	if _, err := c.do(ctx, http.MethodPost, interviewPath(id)+"/feedback", nil, &out); err != nil {
		return nil, fmt.Errorf("complete interview %s: %w", id, err)
	}
	return &out, nil
}

func (c *Client) DeleteInterview(ctx context.Context, id uuid.UUID) error {
	if _, err := c.do(ctx, http.MethodDelete, interviewPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete interview %s: %w", id, err)
	}
	return nil
}

// BulkDelete removes all of ids or, if any is missing, none of them.
func (c *Client) BulkDelete(ctx context.Context, ids []uuid.UUID) (int, error) {
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	var out struct {
		Deleted int `json:"deleted"`
	}
	body := map[string][]string{"ids": raw}
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/interviews/bulk-delete", body, &out); err != nil {
		return 0, fmt.Errorf("bulk delete: %w", err)
	}
	return out.Deleted, nil
}

func interviewPath(id uuid.UUID) string {
	return "/api/v1/interviews/" + id.String()
}
