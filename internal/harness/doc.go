// Package harness replays YAML scenarios against a store and collector and
// checks the pulled wire events.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	seed: 1            # randomness for insert positions and event tags
//	low_memory: false  # capacity profile
//	debug: false       # short cooldowns, 2s duration buckets
//	steps:
//	  - add: voice_call_rat_usage
//	    record: { carrier_id: 1, rat: 13, total_duration_millis: 600000, call_count: 5 }
//	  - advance: 24h
//	  - pull: voice_call_rat_usage
//	    expect: { result: success, events: 1 }
//	  - restart: true  # reopen the store from its persisted snapshot
//	assertions:
//	  - type: stored_count
//	    kind: voice_call_rat_usage
//	    count: 0
//	  - type: event_contains
//	    kind: voice_call_rat_usage
//	    fields: { carrier_id: 1, total_duration_seconds: 600 }
//
// Each step does exactly one thing: add, advance, pull, flush, clear or
// restart.
//
// # Assertion Types
//
//   - stored_count: the store holds exactly count records of kind
//   - event_count: pulls of kind returned count events in total
//   - event_contains: some pulled event of kind has the given field values
//
// # Deterministic Testing
//
// Scenarios run on a mock clock starting at testutil.Epoch, with PCG
// generators seeded from the scenario and an in-memory backend that is
// written on every change. The same scenario always produces the same
// transcript, which RunWithGolden compares against testdata/golden.
package harness
