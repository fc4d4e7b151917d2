package bounded

import "math/rand/v2"

// Evictor chooses the index of the record to overwrite. items is never empty.
type Evictor[T any] func(items []*T, rng *rand.Rand) int

// Evict turns an Evictor into a FullPolicy that overwrites the chosen record.
func Evict[T any](choose Evictor[T]) FullPolicy[T] {
	return func(items []*T, rec *T, rng *rand.Rand) Outcome {
		items[choose(items, rng)] = rec
		return Evicted
	}
}

// Random picks a uniformly random index.
func Random[T any]() Evictor[T] {
	return func(items []*T, rng *rand.Rand) int {
		return rng.IntN(len(items))
	}
}

// LeastRecentlyUsed picks the record with the smallest lastUsed value. Ties go
// to the first occurrence.
func LeastRecentlyUsed[T any](lastUsed func(*T) int64) Evictor[T] {
	return func(items []*T, _ *rand.Rand) int {
		victim := 0
		for i := 1; i < len(items); i++ {
			if lastUsed(items[i]) < lastUsed(items[victim]) {
				victim = i
			}
		}
		return victim
	}
}

// PreferUnprotected picks a random record among those protected reports false
// for. If every record is protected it falls back to a random index.
func PreferUnprotected[T any](protected func(*T) bool) Evictor[T] {
	return func(items []*T, rng *rand.Rand) int {
		candidates := make([]int, 0, len(items))
		for i, it := range items {
			if !protected(it) {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 0 {
			return rng.IntN(len(items))
		}
		return candidates[rng.IntN(len(candidates))]
	}
}

// MergeOrEvict is the policy for high-volume kinds whose records carry a
// dedup hash over their dimension fields. In order of preference it
//  1. merges rec into a stored record with the same hash;
//  2. merges two stored records sharing a hash and puts rec in the freed slot;
//  3. overwrites the stored record with the lowest count.
func MergeOrEvict[T any](hash func(*T) uint64, count func(*T) int64, merge func(dst, src *T)) FullPolicy[T] {
	return func(items []*T, rec *T, _ *rand.Rand) Outcome {
		h := hash(rec)
		for _, it := range items {
			if hash(it) == h {
				merge(it, rec)
				return Merged
			}
		}

		first := make(map[uint64]int, len(items))
		for i, it := range items {
			ih := hash(it)
			if j, ok := first[ih]; ok {
				merge(items[j], it)
				items[i] = rec
				return Compacted
			}
			first[ih] = i
		}

		victim := 0
		for i := 1; i < len(items); i++ {
			if count(items[i]) < count(items[victim]) {
				victim = i
			}
		}
		items[victim] = rec
		return Evicted
	}
}
