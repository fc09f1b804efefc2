package livetranscribe

import "math"

// frameRMS returns the root-mean-square amplitude of 16-bit samples,
// used as a proxy for loudness.
func frameRMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		f := float64(s)
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// toFloat32 converts 16-bit PCM to normalized float32 in [-1, 1].
func toFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768.0
	}
	return out
}

// padSilence right-pads samples with zeros up to min samples. Short
// fragments are padded rather than discarded so the recognizer always
// receives a well-formed window.
func padSilence(samples []int16, min int) []int16 {
	if len(samples) >= min {
		return samples
	}
	padded := make([]int16, min)
	copy(padded, samples)
	return padded
}
