package dynamic

import (
	"fmt"
	"strings"
	"unicode"
)

// Transform converts templated-markup syntax into equivalent plain
// nested h() calls, leaving all other source text untouched.
//
//	<Box pad="2">{title}</Box>  =>  h("Box", {pad: "2"}, title)
//
// String literals and comments are skipped so a '<' inside them is never
// mistaken for markup.
func Transform(source string) (string, error) {
	var out strings.Builder
	i := 0

	for i < len(source) {
		c := source[i]

		switch {
		case c == '"' || c == '\'' || c == '`':
			end, err := skipString(source, i)
			if err != nil {
				return "", err
			}
			out.WriteString(source[i:end])
			i = end
		case c == '/' && i+1 < len(source) && (source[i+1] == '/' || source[i+1] == '*'):
			end := skipComment(source, i)
			out.WriteString(source[i:end])
			i = end
		case c == '<' && i+1 < len(source) && isTagStart(rune(source[i+1])):
			call, end, err := parseElement(source, i)
			if err != nil {
				return "", err
			}
			out.WriteString(call)
			i = end
		default:
			out.WriteByte(c)
			i++
		}
	}

	return out.String(), nil
}

// parseElement consumes one markup element starting at '<' and returns
// the equivalent h() call.
func parseElement(src string, start int) (string, int, error) {
	i := start + 1
	name, i := readName(src, i)
	if name == "" {
		return "", 0, fmt.Errorf("markup element at offset %d has no tag name", start)
	}

	props, i, selfClosing, err := parseProps(src, i)
	if err != nil {
		return "", 0, err
	}

	var children []string
	if !selfClosing {
		children, i, err = parseChildren(src, i, name)
		if err != nil {
			return "", 0, err
		}
	}

	call := fmt.Sprintf("h(%q, %s", name, props)
	for _, child := range children {
		call += ", " + child
	}
	call += ")"
	return call, i, nil
}

// parseProps consumes attributes up to '>' or '/>'
func parseProps(src string, i int) (string, int, bool, error) {
	var pairs []string

	for i < len(src) {
		i = skipSpace(src, i)
		if i >= len(src) {
			break
		}
		if src[i] == '>' {
			return propsObject(pairs), i + 1, false, nil
		}
		if src[i] == '/' && i+1 < len(src) && src[i+1] == '>' {
			return propsObject(pairs), i + 2, true, nil
		}

		var name string
		name, i = readName(src, i)
		if name == "" {
			return "", 0, false, fmt.Errorf("malformed attribute at offset %d", i)
		}

		if i < len(src) && src[i] == '=' {
			i++
			switch {
			case i < len(src) && src[i] == '"':
				end, err := skipString(src, i)
				if err != nil {
					return "", 0, false, err
				}
				pairs = append(pairs, fmt.Sprintf("%s: %s", name, src[i:end]))
				i = end
			case i < len(src) && src[i] == '{':
				expr, end, err := readBraced(src, i)
				if err != nil {
					return "", 0, false, err
				}
				inner, err := Transform(expr)
				if err != nil {
					return "", 0, false, err
				}
				pairs = append(pairs, fmt.Sprintf("%s: (%s)", name, inner))
				i = end
			default:
				return "", 0, false, fmt.Errorf("attribute %q at offset %d needs a string or braced value", name, i)
			}
		} else {
			// Bare flag attribute
			pairs = append(pairs, fmt.Sprintf("%s: true", name))
		}
	}

	return "", 0, false, fmt.Errorf("unterminated markup element")
}

// parseChildren consumes children until the matching close tag
func parseChildren(src string, i int, name string) ([]string, int, error) {
	var children []string
	var text strings.Builder

	flushText := func() {
		if t := strings.TrimSpace(text.String()); t != "" {
			children = append(children, fmt.Sprintf("%q", t))
		}
		text.Reset()
	}

	for i < len(src) {
		switch {
		case strings.HasPrefix(src[i:], "</"):
			flushText()
			end := strings.IndexByte(src[i:], '>')
			if end < 0 {
				return nil, 0, fmt.Errorf("unterminated close tag for <%s>", name)
			}
			closing := strings.TrimSpace(src[i+2 : i+end])
			if closing != name {
				return nil, 0, fmt.Errorf("close tag </%s> does not match <%s>", closing, name)
			}
			return children, i + end + 1, nil
		case src[i] == '<' && i+1 < len(src) && isTagStart(rune(src[i+1])):
			flushText()
			call, end, err := parseElement(src, i)
			if err != nil {
				return nil, 0, err
			}
			children = append(children, call)
			i = end
		case src[i] == '{':
			flushText()
			expr, end, err := readBraced(src, i)
			if err != nil {
				return nil, 0, err
			}
			inner, err := Transform(expr)
			if err != nil {
				return nil, 0, err
			}
			children = append(children, "("+inner+")")
			i = end
		default:
			text.WriteByte(src[i])
			i++
		}
	}

	return nil, 0, fmt.Errorf("missing close tag for <%s>", name)
}

func propsObject(pairs []string) string {
	if len(pairs) == 0 {
		return "{}"
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// readBraced consumes a {…} expression, honoring nesting and strings
func readBraced(src string, start int) (string, int, error) {
	depth := 0
	i := start
	for i < len(src) {
		switch src[i] {
		case '"', '\'', '`':
			end, err := skipString(src, i)
			if err != nil {
				return "", 0, err
			}
			i = end
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
			if depth == 0 {
				return src[start+1 : i-1], i, nil
			}
		default:
			i++
		}
	}
	return "", 0, fmt.Errorf("unterminated expression at offset %d", start)
}

func skipString(src string, start int) (int, error) {
	quote := src[start]
	i := start + 1
	for i < len(src) {
		if src[i] == '\\' {
			i += 2
			continue
		}
		if src[i] == quote {
			return i + 1, nil
		}
		i++
	}
	return 0, fmt.Errorf("unterminated string at offset %d", start)
}

func skipComment(src string, start int) int {
	if src[start+1] == '/' {
		if end := strings.IndexByte(src[start:], '\n'); end >= 0 {
			return start + end
		}
		return len(src)
	}
	if end := strings.Index(src[start:], "*/"); end >= 0 {
		return start + end + 2
	}
	return len(src)
}

func skipSpace(src string, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r') {
		i++
	}
	return i
}

func readName(src string, i int) (string, int) {
	start := i
	for i < len(src) && (unicode.IsLetter(rune(src[i])) || unicode.IsDigit(rune(src[i])) || src[i] == '-' || src[i] == '_') {
		i++
	}
	return src[start:i], i
}

// isTagStart reports whether a rune can open a markup tag name. Tags in
// the view dialect are capitalized, which keeps a lowercase comparison
// like i<n from being read as markup.
func isTagStart(r rune) bool {
	return unicode.IsUpper(r)
}
