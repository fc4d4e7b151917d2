package wire

import (
	"math"
	"time"
)

const (
	// DurationBucket is the rounding granularity for exported durations.
	DurationBucket = 5 * time.Minute
	// DebugDurationBucket replaces DurationBucket on debug builds.
	DebugDurationBucket = 2 * time.Second
)

// Rounder rounds millisecond durations to the nearest bucket before unit
// conversion, so exported values cannot single out one short event.
type Rounder struct {
	Bucket time.Duration
}

func (r Rounder) round(valueMillis int64) int64 {
	b := r.Bucket.Milliseconds()
	if b <= 0 {
		return valueMillis
	}
	return int64(math.Floor(float64(valueMillis)/float64(b)+0.5)) * b
}

// Seconds rounds valueMillis to the bucket and converts it to seconds.
func (r Rounder) Seconds(valueMillis int64) int32 {
	return int32(r.round(valueMillis) / time.Second.Milliseconds())
}

// Minutes rounds valueMillis to the bucket and converts it to minutes.
func (r Rounder) Minutes(valueMillis int64) int32 {
	return int32(r.round(valueMillis) / time.Minute.Milliseconds())
}
