package types

import "fmt"

// Encoding discriminates how a GeneratedTab carries its content
type Encoding string

const (
	EncodingTree          Encoding = "tree"
	EncodingDocument      Encoding = "document"
	EncodingDynamicSource Encoding = "dynamicSource"
)

// TabState represents dynamic tab lifecycle states
type TabState string

const (
	StateCompiling TabState = "compiling"
	StateRendered  TabState = "rendered"
	StateError     TabState = "error"
)

// TurnRole identifies who authored a refinement turn
type TurnRole string

const (
	RoleRequester TurnRole = "requester"
	RoleSystem    TurnRole = "system"
)

// GeneratedTab is one AI-produced unit of interactive content.
//
// Exactly one of Nodes (tree encoding) or Payload (document/dynamicSource
// encodings) is populated, selected by Encoding. Node order is render
// order. A tab is immutable except for wholesale payload replacement by
// the refinement loop; the engine never persists one.
type GeneratedTab struct {
	ID       string              `json:"id"`
	Title    string              `json:"title"`
	Icon     string              `json:"icon,omitempty"`
	Encoding Encoding            `json:"encoding"`
	Nodes    []ContentNode       `json:"nodes,omitempty"`
	Payload  string              `json:"payload,omitempty"`
	Sources  []SourceAttribution `json:"sources,omitempty"`
}

// Validate enforces the one-of invariant between Nodes and Payload
func (t *GeneratedTab) Validate() error {
	switch t.Encoding {
	case EncodingTree:
		if t.Payload != "" {
			return fmt.Errorf("tree tab %s carries a payload", t.ID)
		}
	case EncodingDocument, EncodingDynamicSource:
		if len(t.Nodes) > 0 {
			return fmt.Errorf("%s tab %s carries content nodes", t.Encoding, t.ID)
		}
	default:
		return fmt.Errorf("tab %s has unknown encoding %q", t.ID, t.Encoding)
	}
	return nil
}

// SourceAttribution is read-only citation data attached to a tab
type SourceAttribution struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Domain string `json:"domain"`
}

// RefinementTurn is one entry in a tab's append-only refinement log.
// The log is cleared when the tab closes.
type RefinementTurn struct {
	Role    TurnRole `json:"role"`
	Text    string   `json:"text"`
	Ordinal int      `json:"ordinal"`
}

// Refinement is a successful refinement result from the collaborator
type Refinement struct {
	NewSource     string `json:"new_source"`
	ChangeSummary string `json:"change_summary"`
}
