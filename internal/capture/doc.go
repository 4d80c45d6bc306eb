// Package capture drives the photo collection session that precedes analysis.
//
// The Machine is an immutable value: every operation returns the next machine
// state plus an effect describing work the caller must perform (currently only
// the analyze request fired when the image set is complete). Guided capture
// walks the five named slots one photo at a time; bulk submission accepts one
// to five unlabeled photos and jumps straight to analysis.
//
// Session wraps a Machine with the asynchronous analyze-and-persist task and a
// completion signal. Reset abandons interest in an in-flight task without
// interrupting it; the stale outcome is discarded when it arrives.
package capture
