// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// Scheduler instances and queued messages use it; callers must treat the
// identifiers as opaque strings.
package idgen
