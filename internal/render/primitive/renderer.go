package primitive

import (
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/tabforge/tabforge/internal/render/element"
	"github.com/tabforge/tabforge/internal/render/inline"
	"github.com/tabforge/tabforge/internal/shared/types"
)

// calloutClasses maps callout kinds to style classes. Unrecognized kinds
// fall back to the info style.
var calloutClasses = map[types.CalloutKind]string{
	types.CalloutInfo:    "callout-info",
	types.CalloutWarning: "callout-warning",
	types.CalloutTip:     "callout-tip",
	types.CalloutPrice:   "callout-price",
	types.CalloutSuccess: "callout-success",
	types.CalloutError:   "callout-error",
}

// Renderer maps ContentNodes to visual elements
type Renderer struct {
	sanitizer *bluemonday.Policy
	inline    *inline.Renderer
}

// New creates a primitive renderer
func New() *Renderer {
	return &Renderer{
		sanitizer: bluemonday.StrictPolicy(),
		inline:    inline.New(),
	}
}

// Render walks an ordered node list into a single container element.
// Input order is preserved; an empty list renders an empty container.
func (r *Renderer) Render(nodes []types.ContentNode) *element.Element {
	root := element.New("div").WithClass("tab-content")
	for _, node := range nodes {
		root.Append(r.RenderNode(node))
	}
	return root
}

// RenderNode maps one node to its visual element. Total: never panics,
// never returns nil.
func (r *Renderer) RenderNode(node types.ContentNode) *element.Element {
	switch node.Kind {
	case types.NodeHeader:
		return element.New("h2").WithClass("node-header").WithText(r.clean(node.Text))
	case types.NodeParagraph:
		// Paragraph text carries inline spans (bold, code, labeled links)
		return element.New("p").WithClass("node-paragraph").
			Append(r.inline.Spans(r.clean(node.Text))...)
	case types.NodeBulletList:
		return r.renderList("ul", node.Items)
	case types.NodeNumberedList:
		return r.renderList("ol", node.Items)
	case types.NodeTable:
		return r.renderTable(node.Columns, node.Rows)
	case types.NodeCardGrid:
		return r.renderCards(node.Cards)
	case types.NodeMap:
		return r.renderMap(node.Locations)
	case types.NodeKeyValue:
		return r.renderPairs(node.Pairs)
	case types.NodeCallout:
		return r.renderCallout(node.Callout, node.Text)
	case types.NodeDivider:
		return element.New("hr").WithClass("node-divider")
	case types.NodeLink:
		return r.renderLink(node.Title, node.Target)
	case types.NodeImage:
		return r.renderImage(node.Source, node.Caption)
	default:
		// Unknown kind degrades to a placeholder, never an error
		return element.Empty()
	}
}

func (r *Renderer) renderList(tag string, items []string) *element.Element {
	list := element.New(tag).WithClass("node-list")
	for _, item := range items {
		list.Append(element.New("li").WithText(r.clean(item)))
	}
	return list
}

// renderTable zips each row positionally against the columns: short rows
// render blank trailing cells, long rows are truncated to the column count.
func (r *Renderer) renderTable(columns []string, rows [][]string) *element.Element {
	table := element.New("table").WithClass("node-table")

	head := element.New("thead")
	headRow := element.New("tr")
	for _, col := range columns {
		headRow.Append(element.New("th").WithText(r.clean(col)))
	}
	head.Append(headRow)
	table.Append(head)

	body := element.New("tbody")
	for _, row := range rows {
		tr := element.New("tr")
		for i := range columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			tr.Append(element.New("td").WithText(r.clean(cell)))
		}
		body.Append(tr)
	}
	table.Append(body)

	return table
}

func (r *Renderer) renderCards(cards []types.CardData) *element.Element {
	grid := element.New("div").WithClass("node-card-grid")
	for _, card := range cards {
		grid.Append(r.renderCard(card))
	}
	return grid
}

func (r *Renderer) renderCard(card types.CardData) *element.Element {
	el := element.New("div").WithClass("card")

	if card.ImageURL != "" {
		el.Append(element.New("img").WithClass("card-image").WithAttr("src", card.ImageURL))
	}
	el.Append(element.New("div").WithClass("card-title").WithText(r.clean(card.Title)))
	if card.Subtitle != "" {
		el.Append(element.New("div").WithClass("card-subtitle").WithText(r.clean(card.Subtitle)))
	}
	if card.Description != "" {
		el.Append(element.New("p").WithClass("card-description").WithText(r.clean(card.Description)))
	}
	if card.SourceURL != "" {
		el.Append(element.New("a").WithClass("card-source").
			WithAttr("href", card.SourceURL).
			WithAttr("rel", "noopener").
			WithText(r.clean(card.SourceURL)))
	}
	for key, value := range card.Meta {
		el.Append(element.New("span").WithClass("card-meta").
			WithAttr("data-key", key).
			WithText(r.clean(value)))
	}

	return el
}

// renderMap emits markers as data attributes; the host attaches the actual
// map widget client-side.
func (r *Renderer) renderMap(locations []types.LocationData) *element.Element {
	container := element.New("div").WithClass("node-map")
	for _, loc := range locations {
		container.Append(element.New("div").WithClass("map-marker").
			WithAttr("data-lat", strconv.FormatFloat(loc.Latitude, 'f', -1, 64)).
			WithAttr("data-lon", strconv.FormatFloat(loc.Longitude, 'f', -1, 64)).
			WithText(r.clean(loc.Title)))
	}
	return container
}

func (r *Renderer) renderPairs(pairs []types.KeyValuePair) *element.Element {
	dl := element.New("dl").WithClass("node-key-value")
	for _, pair := range pairs {
		dl.Append(
			element.New("dt").WithText(r.clean(pair.Key)),
			element.New("dd").WithText(r.clean(pair.Value)),
		)
	}
	return dl
}

func (r *Renderer) renderCallout(kind types.CalloutKind, text string) *element.Element {
	class, ok := calloutClasses[kind]
	if !ok {
		class = calloutClasses[types.CalloutInfo]
	}
	return element.New("div").WithClass("node-callout "+class).WithText(r.clean(text))
}

// renderLink treats a literal "#" target as inert: it renders as plain
// text, never navigation.
func (r *Renderer) renderLink(title, target string) *element.Element {
	label := r.clean(title)
	if label == "" {
		label = r.clean(target)
	}
	if target == "" || target == "#" {
		return element.New("span").WithClass("node-link-inert").WithText(label)
	}
	return element.New("a").WithClass("node-link").
		WithAttr("href", target).
		WithAttr("rel", "noopener").
		WithText(label)
}

func (r *Renderer) renderImage(source, caption string) *element.Element {
	if source == "" {
		return element.Empty()
	}
	fig := element.New("figure").WithClass("node-image").
		Append(element.New("img").WithAttr("src", source))
	if caption != "" {
		fig.Append(element.New("figcaption").WithText(r.clean(caption)))
	}
	return fig
}

// clean strips any markup from an AI-authored display string. The
// sanitizer entity-escapes its output; unescape back to plain text so the
// element writer escapes exactly once.
func (r *Renderer) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(r.sanitizer.Sanitize(s)))
}
