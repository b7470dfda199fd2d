package interview

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrEmptyAnswer = errors.New("answer must not be empty")
var ErrBulkDeleteSize = fmt.Errorf("bulk delete accepts between 1 and %d ids", MaxBulkDelete)

// ValidationError reports every invalid field of a create request at once.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
