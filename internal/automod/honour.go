package automod

import "math"

// DefaultPendingThreshold is the honour level below which new content starts pending.
const DefaultPendingThreshold = 0.4

// ComputeHonourLevel scores a user's track record. New users (no clean posts, no
// offences) score exactly 0.5; clean posts raise the score and offences lower
// it. The result is capped at 1.
func ComputeHonourLevel(cleanPosts, offences int) float64 {
	return math.Min(1, (1+float64(cleanPosts)*0.1)/(2+float64(offences)))
}
