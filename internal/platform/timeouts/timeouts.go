// Package timeouts defines shared timeout constants used across the mirror.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long a server waits for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second

// UpstreamRequest caps a single call to the storefront HTTP API.
const UpstreamRequest = 10 * time.Second

// HealthProbe caps one readiness probe against the health server.
const HealthProbe = 2 * time.Second
