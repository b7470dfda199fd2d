package store

import (
	"fmt"

	"github.com/kiranshivaraju/mockview/pkg/models"
)

// validTransitions lists the statuses reachable through UpdateInterviewStatus.
// Completed is reached only through CompleteInterview, which writes the
// feedback in the same statement.
var validTransitions = map[models.Status][]models.Status{
	models.StatusCreated: {models.StatusInProgress},
}

// CheckTransition reports whether an interview in status from may be moved to
// status to by a plain status update. Re-applying the current status is allowed
// and is a no-op for the caller.
func CheckTransition(from, to models.Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if from == to {
		return nil
	}
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
