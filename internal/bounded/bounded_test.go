package bounded

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rec struct {
	id        int
	lastUsed  int64
	emergency bool
	hash      uint64
	count     int64
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func ids(items []*rec) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.id
	}
	return out
}

func failOnFull(t *testing.T) FullPolicy[rec] {
	return func([]*rec, *rec, *rand.Rand) Outcome {
		t.Fatal("full policy invoked on a collection with room")
		return Dropped
	}
}

func TestInsert_EmptyGoesToIndexZero(t *testing.T) {
	items, out := Insert(nil, &rec{id: 1}, 3, newRand(1), failOnFull(t))
	assert.Equal(t, Inserted, out)
	assert.Equal(t, []int{1}, ids(items))
}

func TestInsert_KeepsEveryRecordWhileRoom(t *testing.T) {
	rng := newRand(2)
	var items []*rec
	for i := 0; i < 10; i++ {
		var out Outcome
		items, out = Insert(items, &rec{id: i}, 10, rng, failOnFull(t))
		require.Equal(t, Inserted, out)
	}
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, ids(items))
}

func TestInsert_ZeroCapacityDrops(t *testing.T) {
	items, out := Insert(nil, &rec{id: 1}, 0, newRand(1), failOnFull(t))
	assert.Equal(t, Dropped, out)
	assert.Empty(t, items)
}

func TestInsert_FullDelegatesToPolicy(t *testing.T) {
	items := []*rec{{id: 1}, {id: 2}}
	called := false
	policy := func(got []*rec, r *rec, _ *rand.Rand) Outcome {
		called = true
		got[0] = r
		return Evicted
	}

	items, out := Insert(items, &rec{id: 3}, 2, newRand(1), policy)

	assert.True(t, called)
	assert.Equal(t, Evicted, out)
	assert.Equal(t, []int{3, 2}, ids(items))
}

func TestInsert_OversizedIsClampedBeforePolicy(t *testing.T) {
	items := []*rec{{id: 1}, {id: 2}, {id: 3}}
	items, _ = Insert(items, &rec{id: 4}, 2, newRand(1), Evict(Random[rec]()))
	assert.Len(t, items, 2)
	assert.Contains(t, ids(items), 4)
}

// Inserting records one by one must produce a uniformly random order: the
// first record should end up at every index about equally often.
func TestInsert_PositionIsUniform(t *testing.T) {
	const (
		trials = 5000
		n      = 5
	)
	rng := newRand(42)
	hits := make([]int, n)
	for trial := 0; trial < trials; trial++ {
		var items []*rec
		for i := 0; i < n; i++ {
			items, _ = Insert(items, &rec{id: i}, 10, rng, failOnFull(t))
		}
		for pos, it := range items {
			if it.id == 0 {
				hits[pos]++
			}
		}
	}

	expected := trials / n
	for pos, h := range hits {
		assert.InDelta(t, expected, h, float64(expected)/5, "position %d", pos)
	}
}

func TestTruncate(t *testing.T) {
	items := []*rec{{id: 1}, {id: 2}, {id: 3}}
	assert.Equal(t, []int{1, 2}, ids(Truncate(items, 2)))
	assert.Len(t, Truncate(items, 5), 3)
	assert.Empty(t, Truncate(items, -1))
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "inserted", Inserted.String())
	assert.Equal(t, "compacted", Compacted.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}
