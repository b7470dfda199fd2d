package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func InterviewKey(id uuid.UUID) string {
	return fmt.Sprintf("interview:%s", id)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
