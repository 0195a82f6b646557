// Package config loads the service configuration from the environment and builds
// the database connections and telemetry providers the service runs on.
package config
