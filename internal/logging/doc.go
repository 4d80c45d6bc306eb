// Package logging constructs the slog loggers used across hemascan.
//
// Loggers are built from the [logging] config section: console output uses a
// text handler, json output a JSON handler, and both can tee into a log file
// under the configured log directory. Attr helpers keep call sites compact and
// make field names consistent; NewNop returns a logger that discards
// everything for tests and optional dependencies.
package logging
