// Package tracing wraps OpenTelemetry so that the scheduler can emit a span
// per dispatch without callers importing the SDK. Tracing stays a no-op until
// Init or InitWithExporter installs a provider.
package tracing
