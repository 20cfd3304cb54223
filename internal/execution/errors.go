package execution

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExecution marks a failure outside the known error kinds.
	ErrExecution = errors.New("mapping execution failed")
	// ErrStopTimeout is returned by Pool.Stop when workers outlive the timeout.
	ErrStopTimeout = errors.New("worker pool did not stop in time")
)

// Kind names a validation stage.
type Kind string

const (
	KindSchema    Kind = "schema"
	KindStructure Kind = "structure"
	KindContent   Kind = "content"
	KindRDF       Kind = "rdf"
)

// ValidationError reports the violations of one stage.
type ValidationError struct {
	Kind     Kind
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Kind, strings.Join(e.Problems, "; "))
}
