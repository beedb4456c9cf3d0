// Package timeouts defines shared timeout constants used across services.
// Centralizing these values prevents drift between service boundaries and
// makes the durations discoverable.
package timeouts

import "time"

// ProviderCall caps a single embedding or sentiment provider request.
const ProviderCall = 30 * time.Second

// StorageOp caps a single baseline read or write against SQLite.
const StorageOp = 5 * time.Second

// HealthProbe caps a single gRPC health check against a running service.
const HealthProbe = 2 * time.Second

// Shutdown limits how long a stopping process waits for in-flight work
// and telemetry flushes.
const Shutdown = 5 * time.Second
