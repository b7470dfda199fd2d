package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/mockview/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var _ Store = (*PostgresStore)(nil)

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Users ---

const userColumns = `id, name, email, image_url, created_at`

// FindOrCreateUser returns the user registered under user.Email, inserting
// user when no such row exists. The boolean reports whether a row was created.
// An existing user is returned unchanged.
func (s *PostgresStore) FindOrCreateUser(ctx context.Context, user *models.User) (*models.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(user.Email))

	var u models.User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, email, image_url, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (email) DO NOTHING
		 RETURNING `+userColumns,
		user.ID, user.Name, email, user.ImageURL, user.CreatedAt,
	).Scan(&u.ID, &u.Name, &u.Email, &u.ImageURL, &u.CreatedAt)
	if err == nil {
		return &u, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("create user: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.ImageURL, &u.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("find user by email: %w", err)
	}
	return &u, false, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.ImageURL, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, key_hash, key_prefix, last_used_at, deleted_at, created_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, user_id, name, key_hash, key_prefix, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		key.ID, key.UserID, key.Name, key.KeyHash, key.KeyPrefix, key.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

// --- Interviews ---

const interviewColumns = `id, user_id, type, title, description, resume_url, questions, status, feedback, created_at`

func scanInterview(row pgx.Row) (*models.Interview, error) {
	var iv models.Interview
	err := row.Scan(&iv.ID, &iv.UserID, &iv.Type, &iv.Title, &iv.Description, &iv.ResumeURL,
		&iv.Questions, &iv.Status, &iv.Feedback, &iv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func (s *PostgresStore) CreateInterview(ctx context.Context, iv *models.Interview) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO interviews (id, user_id, type, title, description, resume_url, questions, status, feedback, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		iv.ID, iv.UserID, iv.Type, iv.Title, iv.Description, iv.ResumeURL,
		iv.Questions, iv.Status, iv.Feedback, iv.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create interview: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetInterview(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Interview, error) {
	iv, err := scanInterview(s.pool.QueryRow(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get interview: %w", err)
	}
	return iv, nil
}

// ListInterviews returns one page of the user's interviews, newest first,
// together with the user's total interview count.
func (s *PostgresStore) ListInterviews(ctx context.Context, filter InterviewFilter) ([]*models.Interview, int, error) {
	filter = filter.Normalize()

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM interviews WHERE user_id = $1`, filter.UserID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count interviews: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	rows, err := s.pool.Query(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		filter.UserID, filter.Limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list interviews: %w", err)
	}
	defer rows.Close()

	interviews := []*models.Interview{}
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan interview: %w", err)
		}
		interviews = append(interviews, iv)
	}
	return interviews, total, rows.Err()
}

// UpdateInterviewStatus moves the interview to status. The current status is
// read under a row lock so concurrent updates cannot race past the check.
func (s *PostgresStore) UpdateInterviewStatus(ctx context.Context, id uuid.UUID, userID uuid.UUID, status models.Status) error {
	if status == models.StatusCompleted {
		return fmt.Errorf("%w: completed is set by CompleteInterview", ErrInvalidTransition)
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		var current models.Status
		err := tx.QueryRow(ctx,
			`SELECT status FROM interviews WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID,
		).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get interview status: %w", err)
		}

		if err := CheckTransition(current, status); err != nil {
			return err
		}
		if current == status {
			return nil
		}

		if _, err := tx.Exec(ctx, `UPDATE interviews SET status = $2 WHERE id = $1`, id, status); err != nil {
			return fmt.Errorf("update interview status: %w", err)
		}
		return nil
	})
}

// SaveAnswer overwrites the answer at index. Other slots are untouched.
func (s *PostgresStore) SaveAnswer(ctx context.Context, id uuid.UUID, userID uuid.UUID, index int, answer string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		var questions []models.QuestionAnswer
		err := tx.QueryRow(ctx,
			`SELECT questions FROM interviews WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID,
		).Scan(&questions)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get interview questions: %w", err)
		}

		if index < 0 || index >= len(questions) {
			return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, index, len(questions))
		}
		questions[index].Answer = &answer

		if _, err := tx.Exec(ctx, `UPDATE interviews SET questions = $2 WHERE id = $1`, id, questions); err != nil {
			return fmt.Errorf("save answer: %w", err)
		}
		return nil
	})
}

// CompleteInterview stores feedback and marks the interview completed in one
// statement. Completing an already completed interview replaces its feedback.
func (s *PostgresStore) CompleteInterview(ctx context.Context, id uuid.UUID, userID uuid.UUID, feedback models.Feedback) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE interviews SET status = $3, feedback = $4 WHERE id = $1 AND user_id = $2`,
		id, userID, models.StatusCompleted, feedback)
	if err != nil {
		return fmt.Errorf("complete interview: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteInterview(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM interviews WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete interview: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteInterviews removes every interview in ids, or none of them. If any id
// is missing or owned by another user, ErrNotFound is returned and nothing is
// deleted. Duplicate ids count once.
func (s *PostgresStore) DeleteInterviews(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	unique := dedupeIDs(ids)
	if len(unique) == 0 {
		return 0, nil
	}

	var deleted int
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var found int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM (SELECT id FROM interviews WHERE user_id = $1 AND id = ANY($2) FOR UPDATE) locked`,
			userID, unique,
		).Scan(&found); err != nil {
			return fmt.Errorf("lock interviews: %w", err)
		}
		if found != len(unique) {
			return ErrNotFound
		}

		tag, err := tx.Exec(ctx, `DELETE FROM interviews WHERE user_id = $1 AND id = ANY($2)`, userID, unique)
		if err != nil {
			return fmt.Errorf("delete interviews: %w", err)
		}
		deleted = int(tag.RowsAffected())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *PostgresStore) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
