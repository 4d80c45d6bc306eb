// Package daemon hosts the long-running hemascan service: single-instance
// locking, the HTTP API, and the wiring between the provider chain and the
// persistence pipeline.
package daemon
