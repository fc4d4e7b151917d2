package testutil

import (
	"io"
	"log/slog"
	"math/rand/v2"
)

// NewRand returns a PCG generator for seed. The same seed always yields the
// same insert positions, eviction victims and event tags.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
