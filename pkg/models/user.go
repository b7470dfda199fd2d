package models

import (
	"time"

	"github.com/google/uuid"
)

// User owns interviews. Users are found or created by email.
type User struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	Email     string    `db:"email"      json:"email"`
	ImageURL  string    `db:"image_url"  json:"image_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
