package primitive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabforge/tabforge/internal/shared/types"
)

func TestRenderNodeTotal(t *testing.T) {
	r := New()

	// Every variant with empty fields must render without panicking
	kinds := []types.NodeKind{
		types.NodeHeader,
		types.NodeParagraph,
		types.NodeBulletList,
		types.NodeNumberedList,
		types.NodeTable,
		types.NodeCardGrid,
		types.NodeMap,
		types.NodeKeyValue,
		types.NodeCallout,
		types.NodeDivider,
		types.NodeLink,
		types.NodeImage,
		types.NodeKind("unknown"),
		types.NodeKind(""),
	}

	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			el := r.RenderNode(types.ContentNode{Kind: kind})
			require.NotNil(t, el)
			assert.NotPanics(t, func() { el.HTML() })
		})
	}
}

func TestTableRowArity(t *testing.T) {
	r := New()

	el := r.renderTable([]string{"A", "B"}, [][]string{
		{"1"},
		{"2", "3", "4"},
	})
	out := el.HTML()

	// Short row gets a blank trailing cell
	assert.Contains(t, out, "<td>1</td><td></td>")
	// Long row drops the extra cell
	assert.Contains(t, out, "<td>2</td><td>3</td>")
	assert.NotContains(t, out, "4")
}

func TestTableEmptyColumns(t *testing.T) {
	r := New()

	el := r.renderTable(nil, [][]string{{"orphan"}})
	out := el.HTML()

	// With no columns, every cell is dropped
	assert.NotContains(t, out, "orphan")
}

func TestCalloutKindFallback(t *testing.T) {
	r := New()

	warn := r.RenderNode(types.ContentNode{Kind: types.NodeCallout, Callout: types.CalloutWarning, Text: "careful"})
	assert.Contains(t, warn.HTML(), "callout-warning")

	unknown := r.RenderNode(types.ContentNode{Kind: types.NodeCallout, Callout: "mystery", Text: "hm"})
	assert.Contains(t, unknown.HTML(), "callout-info")
}

func TestLinkInertTarget(t *testing.T) {
	r := New()

	inert := r.RenderNode(types.ContentNode{Kind: types.NodeLink, Title: "here", Target: "#"})
	assert.NotContains(t, inert.HTML(), "href")
	assert.Contains(t, inert.HTML(), "here")

	live := r.RenderNode(types.ContentNode{Kind: types.NodeLink, Title: "docs", Target: "https://example.com"})
	assert.Contains(t, live.HTML(), `href="https://example.com"`)
}

func TestOrderPreserved(t *testing.T) {
	r := New()

	el := r.RenderNode(types.ContentNode{
		Kind:  types.NodeKeyValue,
		Pairs: []types.KeyValuePair{{Key: "z", Value: "1"}, {Key: "a", Value: "2"}},
	})
	out := el.HTML()

	assert.Less(t, strings.Index(out, "<dt>z</dt>"), strings.Index(out, "<dt>a</dt>"))
}

func TestEmptyListsRenderEmptyContainers(t *testing.T) {
	r := New()

	grid := r.RenderNode(types.ContentNode{Kind: types.NodeCardGrid})
	assert.Equal(t, `<div class="node-card-grid"></div>`, grid.HTML())

	m := r.RenderNode(types.ContentNode{Kind: types.NodeMap})
	assert.Equal(t, `<div class="node-map"></div>`, m.HTML())
}

func TestMarkupInTextDegradesToText(t *testing.T) {
	r := New()

	el := r.RenderNode(types.ContentNode{Kind: types.NodeParagraph, Text: `hi <script>x()</script> there`})
	out := el.HTML()

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "hi")
}

func TestRenderWalkOrder(t *testing.T) {
	r := New()

	root := r.Render([]types.ContentNode{
		{Kind: types.NodeHeader, Text: "Results"},
		{Kind: types.NodeTable, Columns: []string{"A", "B"}, Rows: [][]string{{"1"}, {"2", "3", "4"}}},
		{Kind: types.NodeDivider},
		{Kind: types.NodeCallout, Callout: types.CalloutWarning, Text: "check values"},
	})

	var out string
	assert.NotPanics(t, func() { out = root.HTML() })

	assert.Contains(t, out, "Results")
	assert.Contains(t, out, "<td>1</td><td></td>")
	assert.Contains(t, out, "<td>2</td><td>3</td>")
	assert.NotContains(t, out, "4")
	assert.Contains(t, out, "node-divider")
	assert.Contains(t, out, "callout-warning")

	assert.Less(t, strings.Index(out, "Results"), strings.Index(out, "node-table"))
	assert.Less(t, strings.Index(out, "node-table"), strings.Index(out, "node-divider"))
	assert.Less(t, strings.Index(out, "node-divider"), strings.Index(out, "callout-warning"))
}

