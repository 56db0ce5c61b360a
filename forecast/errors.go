package forecast

import (
	"errors"
	"fmt"
	"strings"
)

// ErrModelNotTrained is returned by the registry when no persisted model
// exists for a target. Callers degrade to actual-data-only results.
var ErrModelNotTrained = errors.New("model not trained")

// SchemaMismatchError reports required columns absent from the dataset.
// It is a per-operation failure, not fatal to sibling operations.
type SchemaMismatchError struct {
	Missing   []string
	Available []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}
