// Package surface hosts untrusted document payloads in an isolated
// rendering context.
//
// The host never interprets the payload. It wraps it with two fragments
// (a strict content policy and a self-contained height reporter script),
// hands the wrapped document to a client-side isolated context, and
// listens on exactly one named inbound channel for height reports. The
// context is an owned resource: one per tab, never reused, released by
// an explicit Close rather than garbage collection.
//
// Navigation attempts inside the context run through a small state
// machine that allows only about: and data: schemes; everything else is
// cancelled so the payload can never leave the sandbox by navigating.
package surface
