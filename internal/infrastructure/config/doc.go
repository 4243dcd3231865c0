// Package config provides 12-factor configuration management for the tab engine.
//
// Configuration is loaded from environment variables with sensible defaults.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - AI: Collaborator HTTP endpoint, timeout and retry settings
//   - Surface: Sandboxed surface height floor and reporter poll interval
//   - Dynamic: Source compiler timeout and entry point
//   - Engine: Surface message queue depth
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, AI_BASE_URL, AI_TIMEOUT
//   - SURFACE_HEIGHT_FLOOR, SURFACE_POLL_INTERVAL
//   - DYNAMIC_TIMEOUT, DYNAMIC_ENTRY_POINT
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST
package config
