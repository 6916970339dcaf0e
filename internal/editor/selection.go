// internal/editor/selection.go
package editor

import "strings"

// Tooltip geometry constants, relative to the editable container
const (
	tooltipOffset = 40.0
	tooltipWidth  = 120.0
)

// Rect is the bounding box of the live selection, reported by the
// presentation shell in container coordinates
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Selection describes the shell's current text selection: the selected text,
// its rune offsets into the document plain text, and its bounding geometry
type Selection struct {
	Text   string `json:"text"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Bounds Rect   `json:"bounds"`
}

// TooltipState is the derived placement of the floating action tooltip
type TooltipState struct {
	Top     float64 `json:"top"`
	Left    float64 `json:"left"`
	Visible bool    `json:"visible"`
}

// Tracker maintains the active selection anchor and the tooltip position
// derived from its geometry. State is transient: any surface mutation clears
// it.
type Tracker struct {
	surface *TreeSurface
	anchor  *Anchor
	tooltip TooltipState
}

// NewTracker creates a tracker bound to a surface
func NewTracker(surface *TreeSurface) *Tracker {
	return &Tracker{surface: surface}
}

// Update inspects the reported selection. A non-collapsed selection with
// non-whitespace text becomes the active anchor and positions the tooltip
// above its horizontal center; anything else clears both.
func (t *Tracker) Update(sel Selection) TooltipState {
	if sel.Start >= sel.End || strings.TrimSpace(sel.Text) == "" {
		t.Clear()
		return t.tooltip
	}
	anchor, err := t.surface.CaptureAnchor(sel.Start, sel.End)
	if err != nil {
		t.Clear()
		return t.tooltip
	}
	t.anchor = anchor
	t.tooltip = TooltipState{
		Top:     sel.Bounds.Top - tooltipOffset,
		Left:    sel.Bounds.Left + sel.Bounds.Width/2 - tooltipWidth/2,
		Visible: true,
	}
	return t.tooltip
}

// Clear drops the anchor and hides the tooltip
func (t *Tracker) Clear() {
	t.anchor = nil
	t.tooltip = TooltipState{}
}

// Anchor returns the active anchor, or nil when no usable selection exists
func (t *Tracker) Anchor() *Anchor {
	return t.anchor
}

// SelectedText returns the active anchor's text, or ""
func (t *Tracker) SelectedText() string {
	if t.anchor == nil {
		return ""
	}
	return t.anchor.Text
}

// Tooltip returns the current tooltip placement
func (t *Tracker) Tooltip() TooltipState {
	return t.tooltip
}
