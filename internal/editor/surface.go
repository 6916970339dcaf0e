// internal/editor/surface.go
package editor

import (
	"strings"

	"github.com/inkforge/storyassist/internal/apperrors"
)

// NodeKind identifies the role of a node in the editable tree
type NodeKind string

const (
	NodeText      NodeKind = "text"
	NodeParagraph NodeKind = "paragraph"
	NodeBold      NodeKind = "bold"
	NodeItalic    NodeKind = "italic"
	NodeUnderline NodeKind = "underline"
	NodeSeparator NodeKind = "separator"
)

// Node is one element of the editable tree. Text nodes carry text, every
// other kind carries children. Inside a paragraph each top-level child is
// either a text node or a single style node wrapping exactly one text node;
// the splicing code relies on that shape.
type Node struct {
	Kind     NodeKind `json:"kind"`
	Text     string   `json:"text,omitempty"`
	Children []*Node  `json:"children,omitempty"`
}

// TextNode creates a text leaf
func TextNode(text string) *Node {
	return &Node{Kind: NodeText, Text: text}
}

// StyledNode creates a style wrapper around a single text leaf
func StyledNode(kind NodeKind, text string) *Node {
	return &Node{Kind: kind, Children: []*Node{TextNode(text)}}
}

// Paragraph creates a paragraph block
func Paragraph(children ...*Node) *Node {
	return &Node{Kind: NodeParagraph, Children: children}
}

// Separator creates the block-level divider inserted between the existing
// document and appended generated content
func Separator() *Node {
	return &Node{Kind: NodeSeparator}
}

// PlainText returns the visible text of a single node
func (n *Node) PlainText() string {
	switch n.Kind {
	case NodeText:
		return n.Text
	case NodeSeparator:
		return ""
	default:
		var sb strings.Builder
		for _, c := range n.Children {
			sb.WriteString(c.PlainText())
		}
		return sb.String()
	}
}

// Fragment is a parsed piece of generated content: a list of block nodes
// ready to be spliced into a surface
type Fragment struct {
	Children []*Node
}

// IsEmpty reports whether the fragment carries no nodes
func (f *Fragment) IsEmpty() bool {
	return f == nil || len(f.Children) == 0
}

// Anchor captures a selected span of the surface: the selected text plus the
// boundaries needed to later delete-and-replace exactly that span. An anchor
// is valid only until the next surface mutation and must not be reused after
// it has been consumed by a splice.
type Anchor struct {
	Text     string
	start    int
	end      int
	revision int64
	consumed bool
}

// Start returns the anchored span's starting rune offset
func (a *Anchor) Start() int { return a.start }

// End returns the anchored span's ending rune offset
func (a *Anchor) End() int { return a.end }

// Surface is the editable tree the splicing algorithm runs against. The gin
// handlers drive the concrete tree implementation; tests may substitute
// their own.
type Surface interface {
	PlainText() string
	Revision() int64
	SetText(text string)
	CaptureAnchor(start, end int) (*Anchor, error)
	ReplaceSpan(a *Anchor, frag *Fragment) error
	AppendFragment(frag *Fragment)
	WrapAnchor(a *Anchor, style NodeKind) error
}

// TreeSurface is the in-memory editable tree. Blocks are paragraph or
// separator nodes; plain text derives from the tree on every read so the
// document content can never diverge from the visible tree.
type TreeSurface struct {
	blocks   []*Node
	revision int64
	caret    int
}

// NewSurface creates an empty surface
func NewSurface() *TreeSurface {
	return &TreeSurface{}
}

// Revision returns the mutation counter. Anchors captured at an older
// revision are rejected.
func (s *TreeSurface) Revision() int64 { return s.revision }

// Caret returns the rune offset the selection collapsed to after the most
// recent splice
func (s *TreeSurface) Caret() int { return s.caret }

// Blocks exposes the block nodes for rendering
func (s *TreeSurface) Blocks() []*Node { return s.blocks }

// PlainText derives the visible text of the whole tree. Blocks are joined as
// visually distinct paragraphs.
func (s *TreeSurface) PlainText() string {
	var sb strings.Builder
	for i, b := range s.blocks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(b.PlainText())
	}
	return sb.String()
}

// SetText replaces the whole tree with plain paragraphs, as a direct user
// edit of the editable area does. Any previously captured anchor becomes
// stale.
func (s *TreeSurface) SetText(text string) {
	s.blocks = nil
	if text != "" {
		for _, part := range strings.Split(text, "\n\n") {
			s.blocks = append(s.blocks, Paragraph(TextNode(part)))
		}
	}
	s.caret = 0
	s.revision++
}

// CaptureAnchor records the span [start, end) of the current plain text as a
// reusable anchor. Offsets are rune offsets into PlainText().
func (s *TreeSurface) CaptureAnchor(start, end int) (*Anchor, error) {
	plain := []rune(s.PlainText())
	if start < 0 || end > len(plain) || start >= end {
		return nil, apperrors.NewValidation("selection span is out of range")
	}
	return &Anchor{
		Text:     string(plain[start:end]),
		start:    start,
		end:      end,
		revision: s.revision,
	}, nil
}

func (s *TreeSurface) checkAnchor(a *Anchor) error {
	if a == nil {
		return apperrors.NewValidation("no active selection anchor")
	}
	if a.consumed {
		return apperrors.NewValidation("selection anchor already consumed")
	}
	if a.revision != s.revision {
		return apperrors.NewValidation("selection anchor is stale")
	}
	return nil
}

// ReplaceSpan deletes the anchored span and splices the fragment's nodes in
// at the deletion point, one node at a time so ordering is preserved. The
// selection collapses to just after the inserted content and the anchor is
// consumed.
func (s *TreeSurface) ReplaceSpan(a *Anchor, frag *Fragment) error {
	if err := s.checkAnchor(a); err != nil {
		return err
	}
	blockIdx, childIdx := s.deleteRange(a.start, a.end)
	inserted := s.insertInline(blockIdx, childIdx, flattenFragment(frag))
	a.consumed = true
	s.caret = a.start + inserted
	s.revision++
	return nil
}

// AppendFragment adds the fragment's blocks at the end of the document. A
// separator block goes in first when the document already has content.
func (s *TreeSurface) AppendFragment(frag *Fragment) {
	if frag.IsEmpty() {
		return
	}
	if s.PlainText() != "" {
		s.blocks = append(s.blocks, Separator())
	}
	s.blocks = append(s.blocks, frag.Children...)
	s.caret = len([]rune(s.PlainText()))
	s.revision++
}

// WrapAnchor replaces the anchored span with the same text wrapped in the
// given inline style
func (s *TreeSurface) WrapAnchor(a *Anchor, style NodeKind) error {
	if style != NodeBold && style != NodeItalic && style != NodeUnderline {
		return apperrors.NewValidation("unsupported formatting style")
	}
	if err := s.checkAnchor(a); err != nil {
		return err
	}
	blockIdx, childIdx := s.deleteRange(a.start, a.end)
	s.insertInline(blockIdx, childIdx, []*Node{StyledNode(style, a.Text)})
	a.consumed = true
	s.caret = a.end
	s.revision++
	return nil
}

// leaf locates one text leaf inside the tree together with its flat rune
// offsets, which mirror PlainText exactly
type leaf struct {
	blockIdx int
	topIdx   int
	wrapper  *Node
	node     *Node
	start    int
	end      int
}

func (s *TreeSurface) leaves() []leaf {
	var out []leaf
	offset := 0
	for bi, blk := range s.blocks {
		if bi > 0 {
			offset += 2 // paragraph joiner
		}
		for ti, child := range blk.Children {
			var wrapper, text *Node
			if child.Kind == NodeText {
				text = child
			} else {
				wrapper = child
				if len(child.Children) > 0 {
					text = child.Children[0]
				}
			}
			if text == nil {
				continue
			}
			n := len([]rune(text.Text))
			out = append(out, leaf{
				blockIdx: bi,
				topIdx:   ti,
				wrapper:  wrapper,
				node:     text,
				start:    offset,
				end:      offset + n,
			})
			offset += n
		}
	}
	return out
}

// splitAt cuts the leaf containing offset so that afterwards every leaf lies
// entirely on one side of the offset
func (s *TreeSurface) splitAt(offset int) {
	for _, lf := range s.leaves() {
		if offset <= lf.start || offset >= lf.end {
			continue
		}
		runes := []rune(lf.node.Text)
		cut := offset - lf.start
		lf.node.Text = string(runes[:cut])
		var tail *Node
		if lf.wrapper != nil {
			tail = StyledNode(lf.wrapper.Kind, string(runes[cut:]))
		} else {
			tail = TextNode(string(runes[cut:]))
		}
		blk := s.blocks[lf.blockIdx]
		rest := append([]*Node{tail}, blk.Children[lf.topIdx+1:]...)
		blk.Children = append(blk.Children[:lf.topIdx+1], rest...)
		return
	}
}

// deleteRange removes the span [start, end) from the tree. A span that cuts
// into the joiner between two blocks collapses those blocks into one, so the
// break is consumed along with the text. It returns the insertion point for
// replacement content as (block index, child index).
func (s *TreeSurface) deleteRange(start, end int) (int, int) {
	s.splitAt(end)
	s.splitAt(start)

	kept := make([][]*Node, len(s.blocks))
	keptBefore := make([]int, len(s.blocks))
	delFirst, delLast := -1, -1
	for _, lf := range s.leaves() {
		top := s.blocks[lf.blockIdx].Children[lf.topIdx]
		if lf.start >= start && lf.end <= end {
			if delFirst == -1 {
				delFirst = lf.blockIdx
			}
			delLast = lf.blockIdx
			continue
		}
		kept[lf.blockIdx] = append(kept[lf.blockIdx], top)
		if lf.end <= start {
			keptBefore[lf.blockIdx]++
		}
	}

	// every joiner the span cuts into merges its neighbouring blocks
	mergeFirst, mergeLast := -1, -1
	offset := 0
	for bi, blk := range s.blocks {
		if bi > 0 {
			joinStart := offset
			offset += 2
			if start < offset && end > joinStart {
				if mergeFirst == -1 {
					mergeFirst = bi - 1
				}
				mergeLast = bi
			}
		}
		offset += len([]rune(blk.PlainText()))
	}

	lo, hi := delFirst, delLast
	if mergeFirst != -1 && (lo == -1 || mergeFirst < lo) {
		lo = mergeFirst
	}
	if mergeLast > hi {
		hi = mergeLast
	}

	if lo == -1 {
		// the span removed nothing; place the insertion point at the block
		// containing start
		offset = 0
		for bi, blk := range s.blocks {
			if bi > 0 {
				offset += 2
			}
			blockLen := len([]rune(blk.PlainText()))
			if start <= offset+blockLen {
				return bi, keptBefore[bi]
			}
			offset += blockLen
		}
		if len(s.blocks) == 0 {
			s.blocks = []*Node{Paragraph()}
		}
		return len(s.blocks) - 1, len(s.blocks[len(s.blocks)-1].Children)
	}

	var merged []*Node
	insChild := 0
	for bi := lo; bi <= hi; bi++ {
		merged = append(merged, kept[bi]...)
		insChild += keptBefore[bi]
	}

	var blocks []*Node
	for bi, blk := range s.blocks {
		if bi > lo && bi <= hi {
			continue
		}
		if bi == lo {
			if blk.Kind != NodeParagraph {
				blk = Paragraph()
			}
			blk.Children = merged
		} else if blk.Kind == NodeParagraph {
			blk.Children = kept[bi]
		}
		blocks = append(blocks, blk)
	}
	s.blocks = blocks
	return lo, insChild
}

// insertInline splices inline nodes into a block one at a time, advancing
// the insertion cursor after each node. It returns the rune length of the
// inserted content.
func (s *TreeSurface) insertInline(blockIdx, childIdx int, nodes []*Node) int {
	if blockIdx < 0 || blockIdx >= len(s.blocks) {
		return 0
	}
	blk := s.blocks[blockIdx]
	inserted := 0
	for _, n := range nodes {
		rest := append([]*Node{n}, blk.Children[childIdx:]...)
		blk.Children = append(blk.Children[:childIdx:childIdx], rest...)
		childIdx++
		inserted += len([]rune(n.PlainText()))
	}
	return inserted
}

// flattenFragment turns block-structured generated content into inline runs
// for insertion at an anchor inside a paragraph. Paragraph boundaries in the
// fragment survive as explicit break runs.
func flattenFragment(frag *Fragment) []*Node {
	if frag.IsEmpty() {
		return nil
	}
	var out []*Node
	for i, b := range frag.Children {
		if i > 0 {
			out = append(out, TextNode("\n\n"))
		}
		switch b.Kind {
		case NodeParagraph:
			out = append(out, b.Children...)
		case NodeSeparator:
			// already emitted a break run
		default:
			out = append(out, b)
		}
	}
	return out
}
