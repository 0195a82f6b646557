// Package testdoubles provides spies for the eventstore observability interfaces.
// They record every call so tests can assert on metrics, spans and log records
// without an OpenTelemetry pipeline.
package testdoubles
