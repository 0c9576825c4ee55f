package testutil

import (
	"math"
	"math/rand"
)

// Sinusoid returns amplitude*sin(2*pi*freqHz*i*dt + phase) for i in [0, length).
func Sinusoid(amplitude, freqHz, phase, dt float64, length int) []float64 {
	out := make([]float64, length)
	w := 2 * math.Pi * freqHz
	for i := range out {
		out[i] = amplitude * math.Sin(w*float64(i)*dt+phase)
	}
	return out
}

// Cosinusoid returns amplitude*cos(2*pi*freqHz*i*dt + phase) for i in [0, length).
func Cosinusoid(amplitude, freqHz, phase, dt float64, length int) []float64 {
	return Sinusoid(amplitude, freqHz, phase+math.Pi/2, dt, length)
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// AddNoise returns x plus deterministic white noise of the given amplitude.
func AddNoise(x []float64, seed int64, amplitude float64) []float64 {
	noise := DeterministicNoise(seed, amplitude, len(x))
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] + noise[i]
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ramp returns start, start+step, ... with the given length.
func Ramp(start, step float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}
