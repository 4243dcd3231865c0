// Package ws provides the WebSocket transport for the tab engine.
//
// One bidirectional connection carries tab generation, refinement and
// render requests plus the single inbound surface channel: size reports
// from isolated rendering contexts are forwarded onto the engine's
// dispatch queue and never answered directly.
package ws
