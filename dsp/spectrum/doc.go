// Package spectrum provides FFT-based helpers for sinusoid records: bin
// magnitude and interpolated peak-frequency estimation.
package spectrum
