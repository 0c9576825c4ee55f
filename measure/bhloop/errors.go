package bhloop

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-bhloop/dsp/smooth"
	"github.com/cwbudde/algo-bhloop/measure/sinefit"
)

// Error taxonomy. Every failure of Run wraps exactly one of these in an
// *Error that names the failing stage.
var (
	ErrEmptyVertexSet      = sinefit.ErrEmptyVertexSet
	ErrDegenerateCycle     = sinefit.ErrDegenerateCycle
	ErrFitDidNotConverge   = sinefit.ErrFitDidNotConverge
	ErrInvalidWindow       = smooth.ErrInvalidWindow
	ErrOutOfRangeReference = errors.New("bhloop: reference instant outside the record")
	ErrMalformedInput      = errors.New("bhloop: malformed input")
	ErrInvalidConfig       = errors.New("bhloop: invalid configuration")
)

// Stage names a pipeline step.
type Stage string

const (
	StageInput     Stage = "input"
	StageLocate    Stage = "locate"
	StageEstimate  Stage = "estimate"
	StageFit       Stage = "fit"
	StageInstants  Stage = "instants"
	StageIntegrate Stage = "integrate"
	StageNormalize Stage = "normalize"
	StageSmooth    Stage = "smooth"
)

// Error reports the stage at which a run aborted.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("bhloop: %s stage: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StageOf returns the stage recorded in err, or "" if err did not come
// from a pipeline run.
func StageOf(err error) Stage {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}

func stageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Stage: stage, Err: err}
}
