// Package types provides shared data structures for the tab rendering engine.
//
// This package defines the core vocabulary used across all engine components,
// ensuring type safety and consistent data structures.
//
// Core Types:
//   - GeneratedTab: One AI-produced unit of interactive content
//   - ContentNode: One data-only layout primitive in the tree encoding
//   - CardData, LocationData, KeyValuePair: Node payloads
//   - SourceAttribution: Read-only citation data
//   - RefinementTurn: One entry in a tab's refinement log
//
// Request Types:
//   - GenerateRequest, RefineRequest: Collaborator interaction
//   - SurfaceMessage: Inbound sandboxed-surface wire message
//
// State Management:
//   - Encoding: Tab encoding discriminator (tree, document, dynamicSource)
//   - TabState: Dynamic tab lifecycle (compiling, rendered, error)
//
// Example Usage:
//
//	tab := &types.GeneratedTab{
//	    ID:       string(id.NewTabID()),
//	    Title:    "Trip Results",
//	    Encoding: types.EncodingTree,
//	    Nodes:    []types.ContentNode{{Kind: types.NodeHeader, Text: "Results"}},
//	}
package types
