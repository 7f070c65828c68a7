package report

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindGenerationFormat  Kind = "generation_format"
	KindGenerationBackend Kind = "generation_backend"
	KindRender            Kind = "render"
	KindDelivery          Kind = "delivery"
)

// StageError is the single absorbing failure of a pipeline run. Stage names
// the state the run failed in.
type StageError struct {
	Stage string
	Kind  Kind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageNameFromError extracts the failing stage for logging and responses.
func StageNameFromError(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return "pipeline"
}

// KindFromError extracts the failure kind, defaulting to validation.
func KindFromError(err error) Kind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindValidation
}

// Narrative-stage sentinels. Both classify as generation format failures:
// downstream stages assume well-formed markup, so the only recourse is to
// run the whole pipeline again.
var (
	ErrNotMarkup      = errors.New("generated narrative does not start with an HTML document; retry the report generation")
	ErrEmptyNarrative = errors.New("generation backend returned an empty narrative; retry the report generation")
)
