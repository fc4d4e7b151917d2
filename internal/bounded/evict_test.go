package bounded

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeastRecentlyUsed(t *testing.T) {
	items := []*rec{
		{id: 1, lastUsed: 300},
		{id: 2, lastUsed: 100},
		{id: 3, lastUsed: 200},
	}
	items, out := Insert(items, &rec{id: 4, lastUsed: 400}, 3, newRand(1),
		Evict(LeastRecentlyUsed(func(r *rec) int64 { return r.lastUsed })))

	assert.Equal(t, Evicted, out)
	assert.Equal(t, []int{1, 4, 3}, ids(items))
}

func TestLeastRecentlyUsed_TieGoesToFirst(t *testing.T) {
	items := []*rec{{id: 1, lastUsed: 5}, {id: 2, lastUsed: 5}}
	lru := LeastRecentlyUsed(func(r *rec) int64 { return r.lastUsed })
	assert.Equal(t, 0, lru(items, newRand(1)))
}

func TestPreferUnprotected_NeverEvictsEmergency(t *testing.T) {
	isEmergency := func(r *rec) bool { return r.emergency }
	choose := PreferUnprotected(isEmergency)
	rng := newRand(7)

	for i := 0; i < 200; i++ {
		items := []*rec{
			{id: 1, emergency: true},
			{id: 2},
			{id: 3, emergency: true},
			{id: 4},
		}
		victim := choose(items, rng)
		assert.False(t, items[victim].emergency, "evicted emergency record at %d", victim)
	}
}

func TestPreferUnprotected_AllProtectedFallsBack(t *testing.T) {
	choose := PreferUnprotected(func(*rec) bool { return true })
	items := []*rec{{id: 1}, {id: 2}, {id: 3}}
	rng := newRand(3)
	seen := map[int]bool{}
	for i := 0; i < 100; i++ {
		v := choose(items, rng)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, len(items))
		seen[v] = true
	}
	assert.Len(t, seen, 3)
}

func smsPolicy() FullPolicy[rec] {
	return MergeOrEvict(
		func(r *rec) uint64 { return r.hash },
		func(r *rec) int64 { return r.count },
		func(dst, src *rec) { dst.count += src.count },
	)
}

func TestMergeOrEvict_MergesWithMatchingHash(t *testing.T) {
	items := []*rec{{id: 1, hash: 10, count: 3}, {id: 2, hash: 20, count: 1}}

	items, out := Insert(items, &rec{id: 3, hash: 10, count: 2}, 2, newRand(1), smsPolicy())

	assert.Equal(t, Merged, out)
	assert.Equal(t, []int{1, 2}, ids(items))
	assert.Equal(t, int64(5), items[0].count)
}

func TestMergeOrEvict_CompactsStoredDuplicates(t *testing.T) {
	items := []*rec{
		{id: 1, hash: 10, count: 1},
		{id: 2, hash: 20, count: 4},
		{id: 3, hash: 10, count: 2},
	}

	items, out := Insert(items, &rec{id: 4, hash: 30, count: 1}, 3, newRand(1), smsPolicy())

	assert.Equal(t, Compacted, out)
	assert.Equal(t, []int{1, 2, 4}, ids(items))
	assert.Equal(t, int64(3), items[0].count)
}

func TestMergeOrEvict_EvictsLowestCount(t *testing.T) {
	items := []*rec{
		{id: 1, hash: 10, count: 5},
		{id: 2, hash: 20, count: 1},
		{id: 3, hash: 30, count: 2},
	}

	items, out := Insert(items, &rec{id: 4, hash: 40, count: 1}, 3, newRand(1), smsPolicy())

	assert.Equal(t, Evicted, out)
	assert.Equal(t, []int{1, 4, 3}, ids(items))
}
