package inline

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tabforge/tabforge/internal/render/element"
)

// Inline rules, in match priority order. Bold must run before italic so
// ** is not consumed as two italics.
var (
	reCode    = regexp.MustCompile("`([^`\n]+)`")
	reBold    = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	reItalic  = regexp.MustCompile(`\*([^*\n]+)\*`)
	reLink    = regexp.MustCompile(`\[([^]\n]+)\]\(([^)\n]+)\)`)
	reOrdered = regexp.MustCompile(`^\d+\.\s+(.*)$`)
)

// Renderer turns short AI-authored text into an element tree
type Renderer struct{}

// New creates an inline span renderer
func New() *Renderer {
	return &Renderer{}
}

// Render parses the text into blocks and applies inline rules per block
func (r *Renderer) Render(text string) *element.Element {
	root := element.New("div").WithClass("inline-content")
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var para []string
	flush := func() {
		if len(para) > 0 {
			root.Append(element.New("p").Append(r.spans(strings.Join(para, " "))...))
			para = nil
		}
	}

	for i := 0; i < len(lines); {
		line := strings.TrimSpace(lines[i])
		switch {
		case line == "":
			flush()
			i++
		case strings.HasPrefix(line, "```"):
			flush()
			block, next := r.scanFence(lines, i)
			root.Append(block)
			i = next
		case headerLevel(line) > 0:
			flush()
			root.Append(r.header(line))
			i++
		case isThematicBreak(line):
			flush()
			root.Append(element.New("hr"))
			i++
		case strings.HasPrefix(line, ">"):
			flush()
			block, next := r.scanRun(lines, i, isQuoteLine, r.quote)
			root.Append(block)
			i = next
		case isBulletLine(line):
			flush()
			block, next := r.scanRun(lines, i, isBulletLine, r.bulletList)
			root.Append(block)
			i = next
		case reOrdered.MatchString(line):
			flush()
			block, next := r.scanRun(lines, i, reOrdered.MatchString, r.orderedList)
			root.Append(block)
			i = next
		default:
			para = append(para, line)
			i++
		}
	}
	flush()

	return root
}

// scanRun consumes a contiguous run of lines matching the same prefix
// predicate and hands them to one block builder.
func (r *Renderer) scanRun(lines []string, start int, match func(string) bool, build func([]string) *element.Element) (*element.Element, int) {
	i := start
	var run []string
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if !match(line) {
			break
		}
		run = append(run, line)
		i++
	}
	return build(run), i
}

// scanFence consumes a fenced code block verbatim: no inline rules apply
// inside. An unterminated fence runs to end of input.
func (r *Renderer) scanFence(lines []string, start int) (*element.Element, int) {
	i := start + 1
	var body []string
	for i < len(lines) {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
			i++
			break
		}
		body = append(body, lines[i])
		i++
	}
	code := element.New("code").WithText(strings.Join(body, "\n"))
	return element.New("pre").WithClass("inline-code-block").Append(code), i
}

func (r *Renderer) header(line string) *element.Element {
	level := headerLevel(line)
	content := strings.TrimSpace(line[level:])
	return element.New("h" + strconv.Itoa(level)).Append(r.spans(content)...)
}

func (r *Renderer) quote(lines []string) *element.Element {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, strings.TrimSpace(strings.TrimPrefix(line, ">")))
	}
	return element.New("blockquote").Append(r.spans(strings.Join(parts, " "))...)
}

func (r *Renderer) bulletList(lines []string) *element.Element {
	list := element.New("ul")
	for _, line := range lines {
		list.Append(element.New("li").Append(r.spans(strings.TrimSpace(line[1:]))...))
	}
	return list
}

func (r *Renderer) orderedList(lines []string) *element.Element {
	list := element.New("ol")
	for _, line := range lines {
		m := reOrdered.FindStringSubmatch(line)
		item := ""
		if m != nil {
			item = m[1]
		}
		list.Append(element.New("li").Append(r.spans(item)...))
	}
	return list
}

// Spans applies only the inline rules to a single block of text,
// skipping the block scanner. Callers that already know the block shape
// (a paragraph node, a chat line) embed the result directly.
func (r *Renderer) Spans(text string) []*element.Element {
	return r.spans(text)
}

// span is one claimed inline match and its replacement element
type span struct {
	start, end int
	el         *element.Element
}

// spans applies the inline rules to one block's text. Each rule claims
// its matches in priority order; overlapping later matches are skipped.
// Replacements are spliced in reverse match order so earlier segments
// keep their offsets.
func (r *Renderer) spans(text string) []*element.Element {
	claimed := make([]bool, len(text))
	// Later rules match against a masked copy where claimed bytes become
	// newlines, which no inline pattern matches. A consumed delimiter can
	// therefore never anchor a phantom span that would make the scanner
	// skip past a real one.
	masked := []byte(text)
	var matched []span

	rules := []struct {
		re    *regexp.Regexp
		build func(m []string) *element.Element
	}{
		{reCode, func(m []string) *element.Element {
			return element.New("code").WithClass("inline-code").WithText(m[1])
		}},
		{reBold, func(m []string) *element.Element {
			return element.New("strong").WithText(m[1])
		}},
		{reItalic, func(m []string) *element.Element {
			return element.New("em").WithText(m[1])
		}},
		{reLink, func(m []string) *element.Element {
			// No href: following a link is an explicit host action
			return element.New("span").WithClass("inline-link").
				WithAttr("data-target", m[2]).
				WithText(m[1])
		}},
	}

	for _, rule := range rules {
		for _, idx := range rule.re.FindAllStringSubmatchIndex(string(masked), -1) {
			start, end := idx[0], idx[1]
			if anyClaimed(claimed, start, end) {
				continue
			}
			for i := start; i < end; i++ {
				claimed[i] = true
				masked[i] = '\n'
			}
			groups := make([]string, 0, len(idx)/2)
			for g := 0; g < len(idx); g += 2 {
				groups = append(groups, text[idx[g]:idx[g+1]])
			}
			matched = append(matched, span{start: start, end: end, el: rule.build(groups)})
		}
	}

	sort.Slice(matched, func(a, b int) bool { return matched[a].start > matched[b].start })

	rest := text
	var tail []*element.Element
	for _, sp := range matched {
		if after := rest[sp.end:]; after != "" {
			tail = append([]*element.Element{element.Text(after)}, tail...)
		}
		tail = append([]*element.Element{sp.el}, tail...)
		rest = rest[:sp.start]
	}

	out := make([]*element.Element, 0, len(tail)+1)
	if rest != "" {
		out = append(out, element.Text(rest))
	}
	return append(out, tail...)
}

func anyClaimed(claimed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}

func headerLevel(line string) int {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level == len(line) || line[level] != ' ' {
		return 0
	}
	return level
}

func isThematicBreak(line string) bool {
	if len(line) < 3 {
		return false
	}
	marker := line[0]
	if marker != '-' && marker != '*' && marker != '_' {
		return false
	}
	for i := 0; i < len(line); i++ {
		if line[i] != marker {
			return false
		}
	}
	return true
}

func isQuoteLine(line string) bool {
	return strings.HasPrefix(line, ">")
}

func isBulletLine(line string) bool {
	if len(line) < 2 {
		return false
	}
	marker := line[0]
	return (marker == '-' || marker == '*' || marker == '+') && line[1] == ' '
}
