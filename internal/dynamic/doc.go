// Package dynamic compiles view-description source text into a live
// component mounted in the host's own element tree.
//
// This path is for semi-trusted content from the configured AI provider,
// not arbitrary payloads; those go through the surface package instead.
// The pipeline is: transform templated markup into plain nested h()
// calls, evaluate the result in a stripped goja runtime that exposes
// exactly three bindings (h, icons, charts), resolve the single required
// entry-point constructor, and mount it behind an error boundary. Every
// stage converts failure into one terminal CompileError; nothing
// propagates raw, and a throw during the component's own render pass
// yields a blank render rather than a host crash.
package dynamic
