package storage

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atomstore/internal/atoms"
)

// capacityChecker records every observation of a kind over its limit.
type capacityChecker struct {
	s *Store

	mu         sync.Mutex
	violations []string
}

func (c *capacityChecker) check(kinds ...atoms.Kind) {
	for _, k := range kinds {
		if n, limit := c.s.Len(k), c.s.MaxLength(k); n > limit {
			c.mu.Lock()
			c.violations = append(c.violations, fmt.Sprintf("%s: %d > %d", k, n, limit))
			c.mu.Unlock()
		}
	}
}

var concurrentKinds = []atoms.Kind{
	atoms.KindCellularServiceState,
	atoms.KindCellularDataServiceSwitch,
	atoms.KindIncomingSms,
	atoms.KindSatelliteController,
}

func addMixed(s *Store, worker, i int) {
	id := int32(worker*1000 + i)
	s.AddServiceState(
		&atoms.CellularServiceState{CarrierID: id % 17, VoiceRat: 13},
		&atoms.CellularDataServiceSwitch{CarrierID: id % 11, RatFrom: 3, RatTo: 13, SwitchCount: 1},
	)
	s.AddIncomingSms(&atoms.IncomingSms{CarrierID: id % 7, Count: 1})
	s.AddSatelliteController(&atoms.SatelliteController{CountOfOutgoingDatagramSuccess: 1})
}

func TestStore_ConcurrentAddDrainFlush(t *testing.T) {
	s, mClock := newTestStore(t, Options{Profile: atoms.Profile{LowMemory: true}})
	checker := &capacityChecker{s: s}
	ctx := testContext(t)

	const adders, rounds = 6, 200
	var (
		addWG   sync.WaitGroup
		drainWG sync.WaitGroup
		drained int64
		flushes int
	)
	stop := make(chan struct{})

	for w := 0; w < adders; w++ {
		addWG.Add(1)
		go func(worker int) {
			defer addWG.Done()
			for i := 0; i < rounds; i++ {
				addMixed(s, worker, i)
				checker.check(concurrentKinds...)
			}
		}(w)
	}

	drainWG.Add(2)
	go func() {
		defer drainWG.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			// The gate needs the clock to move between drains.
			mClock.Advance(time.Millisecond).MustWait(ctx)
			if got, ok := s.DrainSatelliteControllers(0); ok {
				for _, c := range got {
					drained += int64(c.CountOfOutgoingDatagramSuccess)
				}
			}
			s.DrainCellularServiceStates(0)
			s.DrainCellularDataServiceSwitches(0)
			s.DrainIncomingSms(0)
			checker.check(concurrentKinds...)
		}
	}()
	go func() {
		defer drainWG.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if err := s.Flush(); err == nil {
				flushes++
			}
			checker.check(concurrentKinds...)
		}
	}()

	addWG.Wait()
	close(stop)
	drainWG.Wait()

	assert.Empty(t, checker.violations)
	assert.Positive(t, flushes)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	var left int64
	for _, c := range snap.SatelliteControllers {
		left += int64(c.CountOfOutgoingDatagramSuccess)
	}
	assert.Equal(t, int64(adders*rounds), drained+left)
}

func TestStore_ConcurrentClearKeepsCapacity(t *testing.T) {
	s, _ := newTestStore(t, Options{Profile: atoms.Profile{LowMemory: true}})
	checker := &capacityChecker{s: s}

	const adders, rounds = 4, 150
	var wg sync.WaitGroup
	for w := 0; w < adders; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				addMixed(s, worker, i)
				checker.check(concurrentKinds...)
			}
		}(w)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			assert.NoError(t, s.Clear())
			checker.check(concurrentKinds...)
		}
	}()
	wg.Wait()

	assert.Empty(t, checker.violations)
	for _, k := range concurrentKinds {
		assert.LessOrEqual(t, s.Len(k), s.MaxLength(k), "%s", k)
	}
	assert.LessOrEqual(t, s.Len(atoms.KindSatelliteController), 1)
}
