// Package element provides the visual element tree produced by the
// renderers and consumed by the host.
//
// An Element is a plain data description of one HTML node: tag,
// attributes, text, children. Renderers build Element trees; WriteHTML
// serializes a tree with context-correct escaping so renderer output can
// never smuggle markup through a text field.
package element

import (
	"html"
	"sort"
	"strings"
)

// Element is one node in a rendered tree
type Element struct {
	Tag      string
	Attrs    map[string]string
	Text     string
	Children []*Element
}

// voidTags render without a closing tag
var voidTags = map[string]bool{
	"br":  true,
	"hr":  true,
	"img": true,
}

// New creates an element with the given tag
func New(tag string) *Element {
	return &Element{Tag: tag}
}

// WithAttr sets an attribute and returns the element for chaining
func (e *Element) WithAttr(key, value string) *Element {
	if e.Attrs == nil {
		e.Attrs = make(map[string]string)
	}
	e.Attrs[key] = value
	return e
}

// WithClass sets the class attribute
func (e *Element) WithClass(class string) *Element {
	return e.WithAttr("class", class)
}

// WithText sets text content
func (e *Element) WithText(text string) *Element {
	e.Text = text
	return e
}

// Append adds children, skipping nils so callers can pass optional parts
func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		if c != nil {
			e.Children = append(e.Children, c)
		}
	}
	return e
}

// Text creates a bare text node (no tag)
func Text(text string) *Element {
	return &Element{Text: text}
}

// Empty creates an invisible placeholder element
func Empty() *Element {
	return New("span").WithClass("placeholder-empty")
}

// HTML serializes the tree to an HTML string
func (e *Element) HTML() string {
	var sb strings.Builder
	e.write(&sb)
	return sb.String()
}

func (e *Element) write(sb *strings.Builder) {
	if e == nil {
		return
	}

	// Bare text node
	if e.Tag == "" {
		sb.WriteString(html.EscapeString(e.Text))
		return
	}

	sb.WriteByte('<')
	sb.WriteString(e.Tag)

	// Deterministic attribute order keeps output stable for idempotence
	// checks and tests.
	if len(e.Attrs) > 0 {
		keys := make([]string, 0, len(e.Attrs))
		for k := range e.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteByte(' ')
			sb.WriteString(k)
			sb.WriteString(`="`)
			sb.WriteString(html.EscapeString(e.Attrs[k]))
			sb.WriteByte('"')
		}
	}

	if voidTags[e.Tag] && e.Text == "" && len(e.Children) == 0 {
		sb.WriteString("/>")
		return
	}

	sb.WriteByte('>')
	sb.WriteString(html.EscapeString(e.Text))
	for _, c := range e.Children {
		c.write(sb)
	}
	sb.WriteString("</")
	sb.WriteString(e.Tag)
	sb.WriteByte('>')
}
