package core

import (
	"math"
	"math/rand"
)

// NoiseGenerator provides the random draws used by the data generator.
// Each instance owns its source; nothing is shared between instances.
type NoiseGenerator struct {
	rng *rand.Rand
}

// NewNoiseGenerator creates a noise generator seeded with the given value
func NewNoiseGenerator(seed int64) *NoiseGenerator {
	return &NoiseGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Gaussian returns a value from a Gaussian distribution with given mean and stdDev
func (ng *NoiseGenerator) Gaussian(mean, stdDev float64) float64 {
	return mean + ng.rng.NormFloat64()*stdDev
}

// Uniform returns a uniform random value in [min, max)
func (ng *NoiseGenerator) Uniform(min, max float64) float64 {
	return min + ng.rng.Float64()*(max-min)
}

// Float64 returns a uniform random value in [0, 1)
func (ng *NoiseGenerator) Float64() float64 {
	return ng.rng.Float64()
}

// Intn returns a uniform random integer in [0, n)
func (ng *NoiseGenerator) Intn(n int) int {
	return ng.rng.Intn(n)
}

// Bool returns true with the given probability
func (ng *NoiseGenerator) Bool(probability float64) bool {
	return ng.rng.Float64() < probability
}

// Mask returns n independent Bernoulli trials with the given probability
func (ng *NoiseGenerator) Mask(n int, probability float64) []bool {
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = ng.Bool(probability)
	}
	return mask
}

// SampleWithoutReplacement picks k distinct indices from [0, n)
func (ng *NoiseGenerator) SampleWithoutReplacement(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	return ng.rng.Perm(n)[:k]
}

// ChooseInt returns one element of choices with uniform probability
func (ng *NoiseGenerator) ChooseInt(choices []int) int {
	return choices[ng.rng.Intn(len(choices))]
}

// SinusoidalVariation returns amplitude * sin(2π * progress)
// progress: position within the period, 1.0 = one full period
func SinusoidalVariation(amplitude, progress float64) float64 {
	return amplitude * math.Sin(2*math.Pi*progress)
}

// ClampPositive ensures a value is non-negative
func ClampPositive(value float64) float64 {
	if value < 0 {
		return 0
	}
	return value
}

// Clamp ensures a value is within bounds
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Round rounds a value to the given number of decimal places
func Round(value float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(value*scale) / scale
}
