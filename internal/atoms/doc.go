// Package atoms defines the telemetry records ("atoms") accumulated by the
// aggregation store.
//
// Every atom kind has:
//   - Dimension fields: identity attributes that decide whether two records
//     describe the same bucket. Each mergeable record exposes them through a
//     Key() method returning a comparable struct.
//   - Measure fields: counters and durations summed when records merge.
//   - Housekeeping fields: LastUsedMillis for kinds evicted least-recently-used.
//
// The Snapshot type is the persisted form of the whole store: one slice per
// kind, one pull timestamp per drainable kind, a few scalar atoms and the
// build identifier the snapshot was written by.
package atoms
