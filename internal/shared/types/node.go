package types

// NodeKind discriminates ContentNode variants
type NodeKind string

const (
	NodeHeader       NodeKind = "header"
	NodeParagraph    NodeKind = "paragraph"
	NodeBulletList   NodeKind = "bullet_list"
	NodeNumberedList NodeKind = "numbered_list"
	NodeTable        NodeKind = "table"
	NodeCardGrid     NodeKind = "card_grid"
	NodeMap          NodeKind = "map"
	NodeKeyValue     NodeKind = "key_value"
	NodeCallout      NodeKind = "callout"
	NodeDivider      NodeKind = "divider"
	NodeLink         NodeKind = "link"
	NodeImage        NodeKind = "image"
)

// CalloutKind selects callout styling
type CalloutKind string

const (
	CalloutInfo    CalloutKind = "info"
	CalloutWarning CalloutKind = "warning"
	CalloutTip     CalloutKind = "tip"
	CalloutPrice   CalloutKind = "price"
	CalloutSuccess CalloutKind = "success"
	CalloutError   CalloutKind = "error"
)

// ContentNode is one layout primitive in the tree encoding.
//
// The union is encoded as a kind tag plus the superset of variant fields;
// only the fields belonging to the tagged variant are meaningful. No
// variant can carry executable content, which is what makes the tree
// encoding safe to render without a sandbox.
type ContentNode struct {
	Kind NodeKind `json:"kind"`

	// Header, Paragraph, Callout
	Text string `json:"text,omitempty"`

	// BulletList, NumberedList (order significant)
	Items []string `json:"items,omitempty"`

	// Table
	Columns []string   `json:"columns,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`

	// CardGrid
	Cards []CardData `json:"cards,omitempty"`

	// Map
	Locations []LocationData `json:"locations,omitempty"`

	// KeyValue (order significant)
	Pairs []KeyValuePair `json:"pairs,omitempty"`

	// Callout
	Callout CalloutKind `json:"callout,omitempty"`

	// Link ("#" target is inert)
	Title  string `json:"title,omitempty"`
	Target string `json:"target,omitempty"`

	// Image
	Source  string `json:"source,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// CardData is the unified card payload shape.
//
// Meta carries optional action labels and other string-valued extras; it
// absorbs the ad-hoc card fields used by collector flows so a single shape
// serves both.
type CardData struct {
	Title       string            `json:"title"`
	Subtitle    string            `json:"subtitle,omitempty"`
	Description string            `json:"description,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
	SourceURL   string            `json:"source_url,omitempty"`
	Meta        map[string]string `json:"meta,omitempty"`
}

// LocationData is one map marker in WGS84 degrees
type LocationData struct {
	Title     string  `json:"title"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// KeyValuePair is one display row in a KeyValue node
type KeyValuePair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
