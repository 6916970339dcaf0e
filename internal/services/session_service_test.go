// internal/services/session_service_test.go
package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inkforge/storyassist/internal/apperrors"
	"github.com/inkforge/storyassist/internal/client"
	"github.com/inkforge/storyassist/internal/editor"
	"github.com/inkforge/storyassist/internal/models"
)

// fakeGenerator substitutes the backend client. It mirrors the client's local
// rewrite validation so service tests exercise the same failure path.
type fakeGenerator struct {
	mu          sync.Mutex
	text        string
	err         error
	branches    []models.Branch
	branchErr   error
	lastReq     client.Request
	lastElement string

	started chan struct{}
	release chan struct{}
}

func (f *fakeGenerator) run(req client.Request) (string, error) {
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.text, f.err
}

func (f *fakeGenerator) Write(ctx context.Context, req client.Request) (string, error) {
	return f.run(req)
}

func (f *fakeGenerator) Rewrite(ctx context.Context, req client.Request) (string, error) {
	if strings.TrimSpace(req.Selection) == "" {
		return "", apperrors.NewValidation(client.ErrSelectionRequired)
	}
	return f.run(req)
}

func (f *fakeGenerator) Describe(ctx context.Context, req client.Request) (string, error) {
	return f.run(req)
}

func (f *fakeGenerator) Brainstorm(ctx context.Context, req client.Request) (string, error) {
	return f.run(req)
}

func (f *fakeGenerator) GenerateContextElement(ctx context.Context, elementType string, req client.Request) (string, error) {
	f.mu.Lock()
	f.lastElement = elementType
	f.mu.Unlock()
	return f.run(req)
}

func (f *fakeGenerator) GenerateStoryBranches(ctx context.Context, req client.Request) ([]models.Branch, error) {
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()
	return f.branches, f.branchErr
}

func (f *fakeGenerator) request() client.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

func newService(gen GenerationClient) *SessionService {
	return NewSessionService(gen, zap.NewNop())
}

func selectSpan(t *testing.T, svc *SessionService, id, text string, start, end int) {
	t.Helper()
	_, err := svc.UpdateSelection(id, editor.Selection{
		Text:  text,
		Start: start,
		End:   end,
	})
	require.NoError(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	svc := newService(&fakeGenerator{})

	state := svc.Create("My Story")
	require.NotEmpty(t, state.ID)
	assert.Equal(t, "My Story", state.Document.Title)
	assert.Equal(t, "", state.Document.Content)
	assert.True(t, state.Document.Saved)
	assert.False(t, state.IsGenerating)

	_, err := svc.State(state.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Close(state.ID))
	_, err = svc.State(state.ID)
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
}

func TestUnknownSession(t *testing.T) {
	svc := newService(&fakeGenerator{})

	_, err := svc.State("nope")
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))

	_, err = svc.Write(context.Background(), "nope", "")
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
}

func TestUpdateContent(t *testing.T) {
	svc := newService(&fakeGenerator{})
	id := svc.Create("").ID

	state, err := svc.UpdateContent(id, "Once upon a time.")
	require.NoError(t, err)

	assert.Equal(t, "Once upon a time.", state.Document.Content)
	assert.Equal(t, 4, state.Document.WordCount)
	assert.False(t, state.Document.Saved)
}

func TestSave(t *testing.T) {
	svc := newService(&fakeGenerator{})
	id := svc.Create("").ID
	_, err := svc.UpdateContent(id, "Hello.")
	require.NoError(t, err)

	state, err := svc.Save(id)
	require.NoError(t, err)
	assert.True(t, state.Document.Saved)
}

func TestRewriteEndToEnd(t *testing.T) {
	gen := &fakeGenerator{text: "In an age long past,"}
	svc := newService(gen)
	id := svc.Create("").ID

	_, err := svc.UpdateContent(id, "Once upon a time.")
	require.NoError(t, err)
	selectSpan(t, svc, id, "Once", 0, 4)

	state, err := svc.Rewrite(context.Background(), id, "")
	require.NoError(t, err)

	assert.Equal(t, "In an age long past, upon a time.", state.Document.Content)
	assert.False(t, state.IsGenerating)
	assert.Empty(t, state.Error)
	assert.False(t, state.Document.Saved)
	assert.False(t, state.Tooltip.Visible)

	req := gen.request()
	assert.Equal(t, "Once upon a time.", req.CurrentText)
	assert.Equal(t, "Once", req.Selection)
}

func TestRewriteWithoutSelection(t *testing.T) {
	gen := &fakeGenerator{text: "irrelevant"}
	svc := newService(gen)
	id := svc.Create("").ID
	_, err := svc.UpdateContent(id, "Once upon a time.")
	require.NoError(t, err)

	state, err := svc.Rewrite(context.Background(), id, "")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
	assert.Equal(t, client.ErrSelectionRequired, state.Error)
	assert.False(t, state.IsGenerating)
	assert.Equal(t, "Once upon a time.", state.Document.Content)
}

func TestWriteAppendsAfterSeparator(t *testing.T) {
	gen := &fakeGenerator{text: "A new paragraph."}
	svc := newService(gen)
	id := svc.Create("").ID
	_, err := svc.UpdateContent(id, "Hello.")
	require.NoError(t, err)

	state, err := svc.Write(context.Background(), id, "")
	require.NoError(t, err)

	assert.Equal(t, "Hello.\n\n\n\nA new paragraph.", state.Document.Content)
	assert.False(t, state.Document.Saved)
	assert.Empty(t, state.Error)
}

func TestGenerationFailureRecordsError(t *testing.T) {
	gen := &fakeGenerator{err: apperrors.NewTransport("API request failed with status 500: Internal Server Error", nil)}
	svc := newService(gen)
	id := svc.Create("").ID
	_, err := svc.UpdateContent(id, "Hello.")
	require.NoError(t, err)

	state, err := svc.Write(context.Background(), id, "")

	require.Error(t, err)
	assert.Contains(t, state.Error, "status 500")
	assert.False(t, state.IsGenerating)
	assert.Equal(t, "Hello.", state.Document.Content)
}

func TestConcurrentGenerationRejected(t *testing.T) {
	gen := &fakeGenerator{
		text:    "Later.",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := newService(gen)
	id := svc.Create("").ID
	_, err := svc.UpdateContent(id, "Hello.")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, firstErr := svc.Write(context.Background(), id, "")
		assert.NoError(t, firstErr)
	}()
	<-gen.started

	_, err = svc.Write(context.Background(), id, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))

	close(gen.release)
	<-done

	state, err := svc.State(id)
	require.NoError(t, err)
	assert.False(t, state.IsGenerating)
}

func TestGenerateContextElement(t *testing.T) {
	t.Run("known element lands in the story context", func(t *testing.T) {
		gen := &fakeGenerator{text: "Fantasy"}
		svc := newService(gen)
		id := svc.Create("").ID

		text, state, err := svc.GenerateContextElement(context.Background(), id, "genre")
		require.NoError(t, err)

		assert.Equal(t, "Fantasy", text)
		assert.Equal(t, "Fantasy", state.StoryContext.Genre)
		assert.Equal(t, "genre", gen.lastElement)
	})

	t.Run("unknown element is returned but not stored", func(t *testing.T) {
		gen := &fakeGenerator{text: "Lots of loose ideas"}
		svc := newService(gen)
		id := svc.Create("").ID

		text, state, err := svc.GenerateContextElement(context.Background(), id, "braindump")
		require.NoError(t, err)

		assert.Equal(t, "Lots of loose ideas", text)
		assert.Equal(t, models.StoryContext{}, state.StoryContext)
	})
}

func TestSetContextFieldFlowsIntoRequests(t *testing.T) {
	gen := &fakeGenerator{text: "More."}
	svc := newService(gen)
	id := svc.Create("").ID

	_, err := svc.SetContextField(id, "genre", "mystery")
	require.NoError(t, err)
	_, err = svc.UpdateContent(id, "Hello.")
	require.NoError(t, err)

	_, err = svc.Write(context.Background(), id, "")
	require.NoError(t, err)

	req := gen.request()
	require.NotNil(t, req.StoryContext)
	assert.Equal(t, "mystery", req.StoryContext.Genre)
}

func TestSetContextFieldUnknown(t *testing.T) {
	svc := newService(&fakeGenerator{})
	id := svc.Create("").ID

	_, err := svc.SetContextField(id, "mood", "gloomy")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
}

func TestFormat(t *testing.T) {
	t.Run("wraps the selected span", func(t *testing.T) {
		svc := newService(&fakeGenerator{})
		id := svc.Create("").ID
		_, err := svc.UpdateContent(id, "Hello world")
		require.NoError(t, err)
		selectSpan(t, svc, id, "Hello", 0, 5)

		state, err := svc.Format(id, "bold")
		require.NoError(t, err)

		assert.Equal(t, "Hello world", state.Document.Content)
		assert.False(t, state.Document.Saved)
	})

	t.Run("without a selection it is a no-op", func(t *testing.T) {
		svc := newService(&fakeGenerator{})
		id := svc.Create("").ID
		_, err := svc.UpdateContent(id, "Hello world")
		require.NoError(t, err)

		state, err := svc.Format(id, "italic")
		require.NoError(t, err)
		assert.Equal(t, "Hello world", state.Document.Content)
	})

	t.Run("rejects unknown styles", func(t *testing.T) {
		svc := newService(&fakeGenerator{})
		id := svc.Create("").ID

		_, err := svc.Format(id, "sparkle")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
	})
}

func TestSelectionTooltip(t *testing.T) {
	svc := newService(&fakeGenerator{})
	id := svc.Create("").ID
	_, err := svc.UpdateContent(id, "Once upon a time.")
	require.NoError(t, err)

	state, err := svc.UpdateSelection(id, editor.Selection{
		Text:   "upon",
		Start:  5,
		End:    9,
		Bounds: editor.Rect{Top: 200, Left: 100, Width: 80},
	})
	require.NoError(t, err)

	assert.True(t, state.Tooltip.Visible)
	assert.Equal(t, 160.0, state.Tooltip.Top)
	assert.Equal(t, 80.0, state.Tooltip.Left)
}

func TestNotifierReceivesMutations(t *testing.T) {
	svc := newService(&fakeGenerator{})

	var mu sync.Mutex
	var notified []SessionState
	svc.SetNotifier(func(state SessionState) {
		mu.Lock()
		notified = append(notified, state)
		mu.Unlock()
	})

	id := svc.Create("").ID
	_, err := svc.UpdateContent(id, "Hello.")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, notified)
	assert.Equal(t, "Hello.", notified[len(notified)-1].Document.Content)
}
