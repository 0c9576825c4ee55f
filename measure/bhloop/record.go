package bhloop

import (
	"fmt"

	"github.com/cwbudde/algo-bhloop/dsp/core"
)

// MinRecordLen is the shortest record accepted. Shorter records cannot
// constrain the three-parameter sinusoid fit.
const MinRecordLen = 4

// Record is a pair of equally sampled channels. It is read-only once built.
type Record struct {
	response  []float64
	reference []float64
}

// NewRecord copies the response and reference channels into a Record.
// Unequal lengths, too few samples or non-finite values yield
// ErrMalformedInput.
func NewRecord(response, reference []float64) (*Record, error) {
	if len(response) != len(reference) {
		return nil, fmt.Errorf("%w: response has %d samples, reference %d", ErrMalformedInput, len(response), len(reference))
	}
	if len(reference) < MinRecordLen {
		return nil, fmt.Errorf("%w: %d samples, need at least %d", ErrMalformedInput, len(reference), MinRecordLen)
	}
	if !core.AllFinite(response) {
		return nil, fmt.Errorf("%w: non-finite response sample", ErrMalformedInput)
	}
	if !core.AllFinite(reference) {
		return nil, fmt.Errorf("%w: non-finite reference sample", ErrMalformedInput)
	}

	return &Record{
		response:  append([]float64(nil), response...),
		reference: append([]float64(nil), reference...),
	}, nil
}

// NewRecordFromColumns builds a Record from a column-major table: column 0
// is the response, column 1 the reference. Further columns are ignored.
func NewRecordFromColumns(columns [][]float64) (*Record, error) {
	if len(columns) < 2 {
		return nil, fmt.Errorf("%w: %d columns, need 2", ErrMalformedInput, len(columns))
	}
	return NewRecord(columns[0], columns[1])
}

// Len returns the number of samples per channel.
func (r *Record) Len() int {
	return len(r.reference)
}

// Response returns a copy of the response channel.
func (r *Record) Response() []float64 {
	return append([]float64(nil), r.response...)
}

// Reference returns a copy of the reference channel.
func (r *Record) Reference() []float64 {
	return append([]float64(nil), r.reference...)
}
