package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	// One degree of longitude on the equator is about 111.2 km
	assert.InDelta(t, 111.19, HaversineKm(0, 0, 0, 1), 0.1)

	// Bangalore to New Delhi, roughly 1740 km
	assert.InDelta(t, 1740, HaversineKm(12.9716, 77.5946, 28.6139, 77.2090), 20)

	// Zero distance to itself
	assert.Equal(t, 0.0, HaversineKm(52.52, 13.405, 52.52, 13.405))

	// Symmetric in its arguments
	assert.InDelta(t,
		HaversineKm(12.97, 77.59, 28.61, 77.21),
		HaversineKm(28.61, 77.21, 12.97, 77.59),
		1e-9)
}
