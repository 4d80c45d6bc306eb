// Package records manages screening persistence backed by SQLite. It stores
// the authoritative scan records, the anonymized research corpus, and
// per-owner scan counters.
package records
