// Package pipeline runs a completed capture through analysis and persistence.
// The record write is the only critical step; enrichment steps (photo upload,
// corpus copy, counters, backend sync) degrade individually without failing
// the scan.
package pipeline
