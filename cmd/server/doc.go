// Package main is the entry point for the TabForge engine server.
//
// This application renders AI-produced generated tabs for a host UI,
// coordinating between the AI collaborator service and the rendering
// pipeline's three encodings: component trees, sandboxed documents and
// runtime-compiled dynamic source.
//
// The server provides:
//   - REST API for tab lifecycle (generate, render, refine, dispose)
//   - WebSocket streaming for real-time tab updates and surface messages
//   - Prometheus metrics and structured logging
//   - Rate limiting and CORS
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -ai http://localhost:8100
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
