// Package tab orchestrates generated-tab lifecycle.
//
// The engine owns every live tab: it dispatches rendering by encoding
// (tree through the primitive renderer, document through a per-tab
// sandboxed surface host, dynamicSource through the compiler), applies
// inbound surface messages on a single dispatch goroutine, serializes
// refinements per tab, and releases surface resources synchronously on
// dispose. Tabs are independent: each owns its surface or compiled
// component and tabs compile and refine concurrently.
package tab
