// Package reputation computes and persists the daily sender-health snapshot.
//
// A scheduled run pulls quota state and a rolling delivery-statistics window
// from the transport provider, aggregates them into per-day rates and a
// 0-100 score, and upserts one row per calendar date. Alert predicates over
// the same rates are exposed for on-demand checks between runs.
//
// Provider failures degrade to zero-valued statistics and store failures are
// logged, never raised: reputation reads must stay off the sending path's
// availability budget.
package reputation
