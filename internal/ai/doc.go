// Package ai provides the HTTP client for the AI collaborator service.
//
// The collaborator produces tab descriptors from prompts and replacement
// dynamic sources from refinement instructions. Calls run through a
// token bucket rate limiter, exponential backoff retries and a circuit
// breaker so a degraded collaborator never cascades into the engine.
package ai
