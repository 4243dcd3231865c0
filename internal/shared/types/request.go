package types

// GenerateRequest asks the AI collaborator for a new tab
type GenerateRequest struct {
	Prompt  string            `json:"prompt" binding:"required"`
	Context map[string]string `json:"context,omitempty"`
}

// RefineRequest asks the engine to refine a dynamic tab's source
type RefineRequest struct {
	Instruction string `json:"instruction" binding:"required"`
}

// TabDescriptor is the collaborator's wire shape for a generated tab.
//
// Legacy descriptors select content through a single ContentType tag
// (card grid, map or dashboard) plus the matching payload field instead
// of a node list; Normalize folds those into a single-node tree so the
// engine has exactly one dispatch path.
type TabDescriptor struct {
	ID       string              `json:"id,omitempty"`
	Title    string              `json:"title"`
	Icon     string              `json:"icon,omitempty"`
	Encoding Encoding            `json:"encoding,omitempty"`
	Nodes    []ContentNode       `json:"nodes,omitempty"`
	Payload  string              `json:"payload,omitempty"`
	Sources  []SourceAttribution `json:"sources,omitempty"`

	// Legacy single-enum path
	ContentType string         `json:"content_type,omitempty"`
	Cards       []CardData     `json:"cards,omitempty"`
	Locations   []LocationData `json:"locations,omitempty"`
	Pairs       []KeyValuePair `json:"pairs,omitempty"`
}

// Normalize converts a descriptor into a GeneratedTab, folding legacy
// single-enum content into a one-node tree.
func (d *TabDescriptor) Normalize() *GeneratedTab {
	tab := &GeneratedTab{
		ID:       d.ID,
		Title:    d.Title,
		Icon:     d.Icon,
		Encoding: d.Encoding,
		Nodes:    d.Nodes,
		Payload:  d.Payload,
		Sources:  d.Sources,
	}

	if tab.Encoding == "" {
		tab.Encoding = EncodingTree
	}

	if tab.Encoding == EncodingTree && len(tab.Nodes) == 0 && d.ContentType != "" {
		switch d.ContentType {
		case "cards":
			tab.Nodes = []ContentNode{{Kind: NodeCardGrid, Cards: d.Cards}}
		case "map":
			tab.Nodes = []ContentNode{{Kind: NodeMap, Locations: d.Locations}}
		case "dashboard":
			tab.Nodes = []ContentNode{{Kind: NodeKeyValue, Pairs: d.Pairs}}
		}
	}

	return tab
}

// SurfaceMessage is the single inbound wire message from an isolated
// rendering context. Type must equal the approved channel name; Value is
// the reported content height in CSS pixels.
type SurfaceMessage struct {
	Type  string      `json:"type"`
	TabID string      `json:"tab_id"`
	Value interface{} `json:"value"`
}
