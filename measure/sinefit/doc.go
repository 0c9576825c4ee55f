// Package sinefit recovers the amplitude, frequency and phase of a sampled
// sinusoid whose cycle boundaries are unknown.
//
// The work is split in three steps that mirror how the parameters are
// bootstrapped from raw data:
//
//   - LocateVertices finds the first positive and negative crest regions,
//     searching in the order implied by the sign of the first sample
//     (the Scenario).
//   - Estimate turns the two crests into an amplitude/frequency/phase seed
//     and resolves the arcsine quadrant from the Scenario and the sample a
//     quarter period in.
//   - Fit refines the seed with damped Gauss-Newton least squares of
//     A*sin(2*pi*f*t + phi) against the whole record.
//
// # Usage
//
//	v, err := sinefit.LocateVertices(reference)
//	seed, err := sinefit.Estimate(reference, v, dt)
//	fit, err := sinefit.Fit(reference, dt, seed, nil)
//
// Every step fails loudly (ErrEmptyVertexSet, ErrDegenerateCycle,
// ErrFitDidNotConverge) instead of returning a default model.
package sinefit
