// internal/editor/markdown.go
package editor

import (
	"regexp"
	"strings"
)

var blankLine = regexp.MustCompile(`\n\s*\n`)

// ParseMarkdown converts generated markdown into a structural fragment.
// Blank-line separated paragraphs become paragraph blocks; **bold**,
// __underline__ and *italic* runs become the matching inline nodes. The
// backend produces prose, not documents, so that small dialect is the whole
// grammar.
func ParseMarkdown(src string) *Fragment {
	frag := &Fragment{}
	for _, para := range blankLine.Split(src, -1) {
		para = strings.TrimRight(para, " \t\n")
		if strings.TrimSpace(para) == "" {
			continue
		}
		frag.Children = append(frag.Children, Paragraph(parseInline(para)...))
	}
	return frag
}

// inline markers in match order; ** before * so bold wins
var inlineMarkers = []struct {
	token string
	kind  NodeKind
}{
	{"**", NodeBold},
	{"__", NodeUnderline},
	{"*", NodeItalic},
}

func parseInline(text string) []*Node {
	var nodes []*Node
	rest := text
	for rest != "" {
		idx, markerLen, kind, content := nextMarkedRun(rest)
		if idx < 0 {
			nodes = append(nodes, TextNode(rest))
			break
		}
		if idx > 0 {
			nodes = append(nodes, TextNode(rest[:idx]))
		}
		nodes = append(nodes, StyledNode(kind, content))
		rest = rest[idx+2*markerLen+len(content):]
	}
	return nodes
}

// nextMarkedRun finds the earliest complete marked run in text. It returns
// the run's byte offset, marker length, node kind and inner content, or
// (-1, 0, "", "") when no complete run remains.
func nextMarkedRun(text string) (int, int, NodeKind, string) {
	best := -1
	bestLen := 0
	var bestKind NodeKind
	var bestContent string
	for _, m := range inlineMarkers {
		open := strings.Index(text, m.token)
		if open < 0 {
			continue
		}
		close := strings.Index(text[open+len(m.token):], m.token)
		if close <= 0 {
			continue
		}
		if best != -1 && open >= best {
			continue
		}
		best = open
		bestLen = len(m.token)
		bestKind = m.kind
		bestContent = text[open+len(m.token) : open+len(m.token)+close]
	}
	if best == -1 {
		return -1, 0, "", ""
	}
	return best, bestLen, bestKind, bestContent
}
