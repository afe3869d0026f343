package automod

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeHonourLevel(t *testing.T) {
	tests := []struct {
		name     string
		clean    int
		offences int
		want     float64
	}{
		{"new user", 0, 0, 0.5},
		{"three offences", 0, 3, 0.2},
		{"two clean posts", 2, 0, 0.6},
		{"capped at one", 50, 0, 1},
		{"offences offset by history", 10, 2, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ComputeHonourLevel(tt.clean, tt.offences), 1e-9)
		})
	}
}

func TestComputeHonourLevel_NewUserIsNotPending(t *testing.T) {
	assert.GreaterOrEqual(t, ComputeHonourLevel(0, 0), DefaultPendingThreshold)
	assert.Less(t, ComputeHonourLevel(0, 3), DefaultPendingThreshold)
}

func TestComputeHonourLevel_Monotonic(t *testing.T) {
	for offences := 0; offences < 20; offences++ {
		for clean := 0; clean < 40; clean++ {
			level := ComputeHonourLevel(clean, offences)
			assert.LessOrEqual(t, level, 1.0)
			assert.Greater(t, level, 0.0)
			assert.GreaterOrEqual(t, ComputeHonourLevel(clean+1, offences), level, "clean=%d offences=%d", clean, offences)
			assert.LessOrEqual(t, ComputeHonourLevel(clean, offences+1), level, "clean=%d offences=%d", clean, offences)
		}
	}
}
