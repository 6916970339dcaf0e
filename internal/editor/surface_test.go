// internal/editor/surface_test.go
package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetText(t *testing.T) {
	t.Run("splits blank-line separated paragraphs into blocks", func(t *testing.T) {
		s := NewSurface()
		s.SetText("First paragraph.\n\nSecond paragraph.")

		require.Len(t, s.Blocks(), 2)
		assert.Equal(t, "First paragraph.\n\nSecond paragraph.", s.PlainText())
	})

	t.Run("empty text clears the tree", func(t *testing.T) {
		s := NewSurface()
		s.SetText("Something")
		s.SetText("")

		assert.Empty(t, s.Blocks())
		assert.Equal(t, "", s.PlainText())
	})

	t.Run("bumps the revision", func(t *testing.T) {
		s := NewSurface()
		before := s.Revision()
		s.SetText("Hello")
		assert.Greater(t, s.Revision(), before)
	})
}

func TestCaptureAnchor(t *testing.T) {
	s := NewSurface()
	s.SetText("Once upon a time.")

	t.Run("captures the selected span text", func(t *testing.T) {
		anchor, err := s.CaptureAnchor(0, 4)
		require.NoError(t, err)
		assert.Equal(t, "Once", anchor.Text)
		assert.Equal(t, 0, anchor.Start())
		assert.Equal(t, 4, anchor.End())
	})

	t.Run("rejects out-of-range spans", func(t *testing.T) {
		_, err := s.CaptureAnchor(0, 500)
		assert.Error(t, err)

		_, err = s.CaptureAnchor(-1, 4)
		assert.Error(t, err)
	})

	t.Run("rejects collapsed spans", func(t *testing.T) {
		_, err := s.CaptureAnchor(3, 3)
		assert.Error(t, err)
	})
}

func TestReplaceSpan(t *testing.T) {
	t.Run("replaces the anchored span with generated content", func(t *testing.T) {
		s := NewSurface()
		s.SetText("Once upon a time.")

		anchor, err := s.CaptureAnchor(0, 4)
		require.NoError(t, err)

		err = s.ReplaceSpan(anchor, ParseMarkdown("In an age long past,"))
		require.NoError(t, err)

		assert.Equal(t, "In an age long past, upon a time.", s.PlainText())
	})

	t.Run("collapses the caret after the inserted content", func(t *testing.T) {
		s := NewSurface()
		s.SetText("Once upon a time.")

		anchor, err := s.CaptureAnchor(0, 4)
		require.NoError(t, err)
		require.NoError(t, s.ReplaceSpan(anchor, ParseMarkdown("In an age long past,")))

		assert.Equal(t, len([]rune("In an age long past,")), s.Caret())
	})

	t.Run("preserves styled runs around the span", func(t *testing.T) {
		s := NewSurface()
		s.SetText("Once upon a time.")

		anchor, err := s.CaptureAnchor(0, 4)
		require.NoError(t, err)
		require.NoError(t, s.ReplaceSpan(anchor, ParseMarkdown("**Suddenly**")))

		assert.Equal(t, "Suddenly upon a time.", s.PlainText())
		blk := s.Blocks()[0]
		require.NotEmpty(t, blk.Children)
		assert.Equal(t, NodeBold, blk.Children[0].Kind)
	})

	t.Run("merges paragraphs when the span crosses a block boundary", func(t *testing.T) {
		s := NewSurface()
		s.SetText("One two.\n\nThree four.")

		anchor, err := s.CaptureAnchor(4, 15)
		require.NoError(t, err)
		require.Equal(t, "two.\n\nThree", anchor.Text)

		require.NoError(t, s.ReplaceSpan(anchor, ParseMarkdown("five")))
		assert.Equal(t, "One five four.", s.PlainText())
		assert.Len(t, s.Blocks(), 1)
	})

	t.Run("span ending on a paragraph break consumes the break", func(t *testing.T) {
		s := NewSurface()
		s.SetText("One two.\n\nThree four.")

		anchor, err := s.CaptureAnchor(4, 10)
		require.NoError(t, err)
		require.Equal(t, "two.\n\n", anchor.Text)

		require.NoError(t, s.ReplaceSpan(anchor, ParseMarkdown("X")))
		assert.Equal(t, "One XThree four.", s.PlainText())
		assert.Len(t, s.Blocks(), 1)
		assert.Equal(t, 5, s.Caret())
	})

	t.Run("span starting on a paragraph break consumes the break", func(t *testing.T) {
		s := NewSurface()
		s.SetText("One two.\n\nThree four.")

		anchor, err := s.CaptureAnchor(8, 15)
		require.NoError(t, err)
		require.Equal(t, "\n\nThree", anchor.Text)

		require.NoError(t, s.ReplaceSpan(anchor, ParseMarkdown("X")))
		assert.Equal(t, "One two.X four.", s.PlainText())
		assert.Len(t, s.Blocks(), 1)
		assert.Equal(t, 9, s.Caret())
	})

	t.Run("span covering only a paragraph break joins the blocks", func(t *testing.T) {
		s := NewSurface()
		s.SetText("One two.\n\nThree four.")

		anchor, err := s.CaptureAnchor(8, 10)
		require.NoError(t, err)
		require.Equal(t, "\n\n", anchor.Text)

		require.NoError(t, s.ReplaceSpan(anchor, ParseMarkdown("X")))
		assert.Equal(t, "One two.XThree four.", s.PlainText())
		assert.Len(t, s.Blocks(), 1)
	})

	t.Run("rejects a stale anchor after a surface mutation", func(t *testing.T) {
		s := NewSurface()
		s.SetText("Once upon a time.")

		anchor, err := s.CaptureAnchor(0, 4)
		require.NoError(t, err)

		s.SetText("Completely different text.")

		err = s.ReplaceSpan(anchor, ParseMarkdown("new"))
		assert.Error(t, err)
		assert.Equal(t, "Completely different text.", s.PlainText())
	})

	t.Run("rejects a consumed anchor", func(t *testing.T) {
		s := NewSurface()
		s.SetText("Once upon a time.")

		anchor, err := s.CaptureAnchor(0, 4)
		require.NoError(t, err)
		require.NoError(t, s.ReplaceSpan(anchor, ParseMarkdown("First")))

		err = s.ReplaceSpan(anchor, ParseMarkdown("Second"))
		assert.Error(t, err)
	})

	t.Run("rejects a nil anchor", func(t *testing.T) {
		s := NewSurface()
		s.SetText("Hello")
		assert.Error(t, s.ReplaceSpan(nil, ParseMarkdown("x")))
	})

	t.Run("multi-paragraph replacement keeps paragraph breaks", func(t *testing.T) {
		s := NewSurface()
		s.SetText("Once upon a time.")

		anchor, err := s.CaptureAnchor(0, 4)
		require.NoError(t, err)
		require.NoError(t, s.ReplaceSpan(anchor, ParseMarkdown("First.\n\nSecond.")))

		assert.Equal(t, "First.\n\nSecond. upon a time.", s.PlainText())
	})
}

func TestAppendFragment(t *testing.T) {
	t.Run("appends directly into an empty document", func(t *testing.T) {
		s := NewSurface()
		s.AppendFragment(ParseMarkdown("Hello."))

		require.Len(t, s.Blocks(), 1)
		assert.Equal(t, "Hello.", s.PlainText())
	})

	t.Run("inserts a separator before appended content", func(t *testing.T) {
		s := NewSurface()
		s.SetText("Hello.")
		s.AppendFragment(ParseMarkdown("World."))

		require.Len(t, s.Blocks(), 3)
		assert.Equal(t, NodeSeparator, s.Blocks()[1].Kind)
		assert.Equal(t, "Hello.\n\n\n\nWorld.", s.PlainText())
	})

	t.Run("moves the caret to the end", func(t *testing.T) {
		s := NewSurface()
		s.SetText("Hello.")
		s.AppendFragment(ParseMarkdown("World."))
		assert.Equal(t, len([]rune(s.PlainText())), s.Caret())
	})

	t.Run("empty fragment is a no-op", func(t *testing.T) {
		s := NewSurface()
		s.SetText("Hello.")
		before := s.Revision()
		s.AppendFragment(&Fragment{})
		assert.Equal(t, before, s.Revision())
		assert.Equal(t, "Hello.", s.PlainText())
	})
}

func TestWrapAnchor(t *testing.T) {
	t.Run("wraps the span without changing the text", func(t *testing.T) {
		s := NewSurface()
		s.SetText("Hello world")

		anchor, err := s.CaptureAnchor(0, 5)
		require.NoError(t, err)
		require.NoError(t, s.WrapAnchor(anchor, NodeBold))

		assert.Equal(t, "Hello world", s.PlainText())
		blk := s.Blocks()[0]
		require.NotEmpty(t, blk.Children)
		assert.Equal(t, NodeBold, blk.Children[0].Kind)
		assert.Equal(t, "Hello", blk.Children[0].PlainText())
	})

	t.Run("rejects non-style kinds", func(t *testing.T) {
		s := NewSurface()
		s.SetText("Hello world")

		anchor, err := s.CaptureAnchor(0, 5)
		require.NoError(t, err)
		assert.Error(t, s.WrapAnchor(anchor, NodeParagraph))
	})

	t.Run("consumes the anchor", func(t *testing.T) {
		s := NewSurface()
		s.SetText("Hello world")

		anchor, err := s.CaptureAnchor(0, 5)
		require.NoError(t, err)
		require.NoError(t, s.WrapAnchor(anchor, NodeItalic))
		assert.Error(t, s.WrapAnchor(anchor, NodeItalic))
	})
}
