package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoiseGeneratorIsSeeded(t *testing.T) {
	a := NewNoiseGenerator(42)
	b := NewNoiseGenerator(42)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Gaussian(0, 1), b.Gaussian(0, 1))
	}
	assert.Equal(t, a.Mask(50, 0.3), b.Mask(50, 0.3))
	assert.Equal(t, a.SampleWithoutReplacement(100, 10), b.SampleWithoutReplacement(100, 10))
}

func TestUniformBounds(t *testing.T) {
	ng := NewNoiseGenerator(1)
	for i := 0; i < 1000; i++ {
		v := ng.Uniform(-2, 3)
		assert.GreaterOrEqual(t, v, -2.0)
		assert.Less(t, v, 3.0)
	}
}

func TestMask(t *testing.T) {
	ng := NewNoiseGenerator(7)

	assert.NotContains(t, ng.Mask(500, 0), true)
	assert.NotContains(t, ng.Mask(500, 1), false)

	hits := 0
	for _, m := range ng.Mask(10000, 0.1) {
		if m {
			hits++
		}
	}
	assert.InDelta(t, 1000, hits, 150)
}

func TestSampleWithoutReplacement(t *testing.T) {
	ng := NewNoiseGenerator(3)

	picked := ng.SampleWithoutReplacement(1000, 10)
	require.Len(t, picked, 10)
	seen := map[int]bool{}
	for _, i := range picked {
		assert.False(t, seen[i], "index %d picked twice", i)
		assert.True(t, i >= 0 && i < 1000)
		seen[i] = true
	}

	assert.Len(t, ng.SampleWithoutReplacement(5, 8), 5)
	assert.Nil(t, ng.SampleWithoutReplacement(5, 0))
}

func TestChooseInt(t *testing.T) {
	ng := NewNoiseGenerator(9)
	for i := 0; i < 100; i++ {
		assert.Contains(t, []int{-10, 10}, ng.ChooseInt([]int{-10, 10}))
	}
}

func TestHelpers(t *testing.T) {
	assert.InDelta(t, 2.0, SinusoidalVariation(2, 0.25), 1e-12)
	assert.InDelta(t, 0.0, SinusoidalVariation(2, 0.5), 1e-12)
	assert.Equal(t, 0.0, ClampPositive(-4.2))
	assert.Equal(t, 4.2, ClampPositive(4.2))
	assert.Equal(t, 15.0, Clamp(3, 15, 35))
	assert.Equal(t, 35.0, Clamp(40, 15, 35))
	assert.Equal(t, 21.3, Round(21.34, 1))
	assert.Equal(t, 0.123, Round(0.12349, 3))
	assert.Equal(t, 102.0, Round(101.996, 2))
	assert.True(t, math.IsNaN(Round(math.NaN(), 1)))
}
