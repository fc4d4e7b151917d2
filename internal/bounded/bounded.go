// Package bounded implements fixed-capacity record collections with
// randomized insertion and per-kind eviction.
//
// Collections are plain slices of record pointers. Callers own the slice and
// any locking; every function here is a pure transformation that may mutate
// the slice elements in place and returns the resulting slice.
package bounded

import (
	crand "crypto/rand"
	"math/rand/v2"
)

// Outcome reports what an Insert did with the incoming record.
type Outcome int

const (
	// Inserted means the record took a new slot.
	Inserted Outcome = iota
	// Evicted means the record overwrote an existing one.
	Evicted
	// Merged means the record was folded into an existing one and not stored
	// on its own.
	Merged
	// Compacted means two stored records were merged to make room and the
	// record took the freed slot.
	Compacted
	// Dropped means the collection has no capacity at all.
	Dropped
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Evicted:
		return "evicted"
	case Merged:
		return "merged"
	case Compacted:
		return "compacted"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// FullPolicy places rec into a full collection by overwriting or merging in
// place. items always has at least one element.
type FullPolicy[T any] func(items []*T, rec *T, rng *rand.Rand) Outcome

// Insert adds rec to items, which may hold at most maxLength records.
//
// When there is room, rec lands on a uniformly random index of the grown
// slice and the record previously at that index moves to the end. Repeated
// inserts therefore yield a uniformly random order regardless of arrival
// order. When items is full, full decides where rec goes.
func Insert[T any](items []*T, rec *T, maxLength int, rng *rand.Rand, full FullPolicy[T]) ([]*T, Outcome) {
	if maxLength <= 0 {
		return items, Dropped
	}
	if len(items) >= maxLength {
		if len(items) > maxLength {
			items = items[:maxLength]
		}
		return items, full(items, rec, rng)
	}

	n := len(items) + 1
	if n == 1 {
		return append(items, rec), Inserted
	}
	at := rng.IntN(n)
	items = append(items, nil)
	items[n-1] = items[at]
	items[at] = rec
	return items, Inserted
}

// Truncate drops records beyond maxLength.
func Truncate[T any](items []*T, maxLength int) []*T {
	if maxLength < 0 {
		maxLength = 0
	}
	if len(items) <= maxLength {
		return items
	}
	out := make([]*T, maxLength)
	copy(out, items)
	return out
}

// NewRand returns a ChaCha8 generator seeded from crypto/rand.
func NewRand() *rand.Rand {
	var seed [32]byte
	_, _ = crand.Read(seed[:])
	return rand.New(rand.NewChaCha8(seed))
}
