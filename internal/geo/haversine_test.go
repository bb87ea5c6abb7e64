package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	assert.Zero(t, Distance(6.9271, 79.8612, 6.9271, 79.8612))
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := Distance(6.9271, 79.8612, 7.2906, 80.6337)
	b := Distance(7.2906, 80.6337, 6.9271, 79.8612)
	assert.InDelta(t, a, b, 1e-9)
}

func TestDistanceColomboToKandy(t *testing.T) {
	// Colombo Fort to Kandy is roughly 94 km as the crow flies.
	d := Distance(6.9271, 79.8612, 7.2906, 80.6337)
	assert.InDelta(t, 94, d, 2)
}

func TestDistanceShortRange(t *testing.T) {
	// Colombo Fort to Pettah, well under a kilometre apart.
	d := Distance(6.9344, 79.8428, 6.9355, 79.8500)
	assert.Less(t, d, 1.5)
	assert.Greater(t, d, 0.0)
}
