package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrModelConstruction marks malformed catalog, site or weight data.
var ErrModelConstruction = errors.New("model construction")

// ValidationError lists the failed checks of a Solution.
type ValidationError struct {
	Failed []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("solution violates %s", strings.Join(e.Failed, ", "))
}
