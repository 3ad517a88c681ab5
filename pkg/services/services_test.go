package services

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notemaster/pkg/autosave"
	"notemaster/pkg/editor"
	"notemaster/pkg/errors"
	"notemaster/pkg/export"
	"notemaster/pkg/models"
)

// fakeRemote plays the notes service and the AI service
type fakeRemote struct {
	mu       sync.Mutex
	topics   map[string]*models.Topic
	gets     int
	added    []string
	saves    [][]models.Block
	saveErr  error
	enhanced *models.EnhanceResult
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{topics: map[string]*models.Topic{
		"t1": {ID: "t1", Title: "Cell Biology", Notes: []models.Block{{ID: "a", Content: "Hello"}}},
		"t2": {ID: "t2", Title: "Organic chemistry"},
	}}
}

func (r *fakeRemote) ListTopics(context.Context) ([]models.TopicSummary, error) {
	return []models.TopicSummary{{ID: "t1", Title: "Cell Biology"}, {ID: "t2", Title: "Organic chemistry"}}, nil
}

func (r *fakeRemote) CreateTopic(_ context.Context, title string) (*models.TopicSummary, error) {
	return &models.TopicSummary{ID: "t3", Title: title}, nil
}

func (r *fakeRemote) GetTopic(_ context.Context, id string) (*models.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	t, ok := r.topics[id]
	if !ok {
		return nil, errors.ErrTopicNotFound
	}
	c := *t
	return &c, nil
}

func (r *fakeRemote) AddNote(_ context.Context, _ string, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.added = append(r.added, content)
	return nil
}

func (r *fakeRemote) UpdateNotes(_ context.Context, _ string, blocks []models.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, blocks)
	return r.saveErr
}

func (r *fakeRemote) Enhance(context.Context, string, models.EnhanceMode) (*models.EnhanceResult, error) {
	return r.enhanced, nil
}

func (r *fakeRemote) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func newTestEditorService(remote *fakeRemote) (*EditorService, *Notifier) {
	notifier := NewNotifier(10)
	scheduler := autosave.NewScheduler(time.Hour, time.Second, remote, nil)
	return NewEditorService(NewTopicService(remote), remote, scheduler, nil, notifier), notifier
}

func TestFilterTopicsIgnoresCase(t *testing.T) {
	topics := []models.TopicSummary{{ID: "1", Title: "Cell Biology"}, {ID: "2", Title: "Organic chemistry"}}
	assert.Len(t, FilterTopics(topics, ""), 2)
	got := FilterTopics(topics, "  BIO ")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.Empty(t, FilterTopics(topics, "physics"))
}

func TestTopicServiceValidates(t *testing.T) {
	svc := NewTopicService(newFakeRemote())
	_, err := svc.Create(context.Background(), "   ")
	assert.Error(t, err)
	assert.Error(t, svc.AddNote(context.Background(), "t1", ""))
	_, err = svc.Get(context.Background(), "a/b")
	assert.Error(t, err)

	created, err := svc.Create(context.Background(), " Physics ")
	require.NoError(t, err)
	assert.Equal(t, "Physics", created.Title)
}

func TestOpenLoadsOnce(t *testing.T) {
	remote := newFakeRemote()
	svc, _ := newTestEditorService(remote)
	ctx := context.Background()

	first, err := svc.Open(ctx, "t1")
	require.NoError(t, err)
	second, err := svc.Open(ctx, "t1")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, remote.gets)
	assert.Equal(t, []string{"t1"}, svc.OpenTopics())
}

func TestEmptyTopicOpensWithOneBlock(t *testing.T) {
	svc, _ := newTestEditorService(newFakeRemote())
	view, err := svc.View(context.Background(), "t2")
	require.NoError(t, err)
	require.Len(t, view.Blocks, 1)
	assert.Equal(t, "", view.Blocks[0].Content)
}

func TestMissingTopicIsError(t *testing.T) {
	svc, _ := newTestEditorService(newFakeRemote())
	_, err := svc.View(context.Background(), "nope")
	assert.True(t, stderrors.Is(err, errors.ErrTopicNotFound))
}

func TestEditsCoalesceAndCloseFlushes(t *testing.T) {
	remote := newFakeRemote()
	svc, _ := newTestEditorService(remote)
	ctx := context.Background()

	view, err := svc.Dispatch(ctx, "t1", editor.Split{BlockID: "a"})
	require.NoError(t, err)
	require.NotNil(t, view.Focus)
	newID := view.Focus.BlockID
	assert.True(t, view.Changed)
	assert.True(t, view.Saving)

	for _, text := range []string{"W", "Wo", "World"} {
		_, err = svc.Input(ctx, "t1", editor.InputEvent{BlockID: newID, Segments: []string{text}, Caret: editor.Caret{Offset: len(text)}})
		require.NoError(t, err)
	}
	assert.Zero(t, remote.saveCount())

	assert.True(t, svc.Close("t1"))
	require.Equal(t, 1, remote.saveCount())
	assert.Equal(t, []models.Block{{ID: "a", Content: "Hello"}, {ID: newID, Content: "World"}}, remote.saves[0])
	assert.Empty(t, svc.OpenTopics())
	assert.False(t, svc.Close("t1"))
}

func TestAddNoteWithOpenEditorKeepsNoteAndEdits(t *testing.T) {
	remote := newFakeRemote()
	svc, _ := newTestEditorService(remote)
	ctx := context.Background()

	_, err := svc.Input(ctx, "t1", editor.InputEvent{BlockID: "a", Segments: []string{"Hello there"}, Caret: editor.Caret{Offset: 11}})
	require.NoError(t, err)
	require.NoError(t, svc.AddNote(ctx, "t1", "From the dashboard"))

	assert.Empty(t, remote.added)
	require.Equal(t, 1, remote.saveCount())
	saved := remote.saves[0]
	require.Len(t, saved, 2)
	assert.Equal(t, "Hello there", saved[0].Content)
	assert.Equal(t, "From the dashboard", saved[1].Content)

	// Later edits are saved on top of the added note.
	_, err = svc.Input(ctx, "t1", editor.InputEvent{BlockID: "a", Segments: []string{"Hello again"}, Caret: editor.Caret{Offset: 11}})
	require.NoError(t, err)
	assert.True(t, svc.Close("t1"))
	require.Equal(t, 2, remote.saveCount())
	assert.Equal(t, "From the dashboard", remote.saves[1][1].Content)
}

func TestAddNoteWithoutEditorPostsToTopic(t *testing.T) {
	remote := newFakeRemote()
	svc, _ := newTestEditorService(remote)

	require.NoError(t, svc.AddNote(context.Background(), "t2", "posted"))
	assert.Equal(t, []string{"posted"}, remote.added)
	assert.Zero(t, remote.saveCount())
	assert.Error(t, svc.AddNote(context.Background(), "t2", ""))
}

func TestFailedSaveNotifies(t *testing.T) {
	remote := newFakeRemote()
	remote.saveErr = errors.ErrNetwork
	svc, notifier := newTestEditorService(remote)
	ctx := context.Background()

	_, err := svc.Dispatch(ctx, "t1", editor.EditText{BlockID: "a", Content: "Hello!", Caret: 6})
	require.NoError(t, err)
	svc.Close("t1")

	notes := notifier.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, "error", notes[0].Kind)
	assert.Equal(t, "t1", notes[0].TopicID)
	assert.Equal(t, errors.ErrSaveFailed.GetUserMessage(), notes[0].Message)
	assert.Empty(t, notifier.Drain())
}

func TestCompositionHoldsInput(t *testing.T) {
	svc, _ := newTestEditorService(newFakeRemote())
	ctx := context.Background()

	view, err := svc.CompositionStart(ctx, "t1", "a")
	require.NoError(t, err)
	assert.True(t, view.Composing)

	view, err = svc.Input(ctx, "t1", editor.InputEvent{BlockID: "a", Segments: []string{"Helloに"}})
	require.NoError(t, err)
	assert.False(t, view.Changed)
	assert.Equal(t, "Hello", view.Blocks[0].Content)

	view, err = svc.CompositionEnd(ctx, "t1", editor.InputEvent{BlockID: "a", Segments: []string{"Hello日本"}, Caret: editor.Caret{Offset: 7}})
	require.NoError(t, err)
	assert.False(t, view.Composing)
	assert.Equal(t, "Hello日本", view.Blocks[0].Content)
	require.NotNil(t, view.Focus)
	assert.Equal(t, editor.Caret{Node: 0, Offset: 7}, view.Focus.Caret)
}

func TestAcceptSavesImmediately(t *testing.T) {
	remote := newFakeRemote()
	remote.enhanced = &models.EnhanceResult{
		OriginalNotes: []models.NoteEntry{{ID: "a", Content: "Hello"}},
		ImprovedNotes: []models.NoteEntry{{Content: "Hello, world."}},
	}
	svc, _ := newTestEditorService(remote)
	ctx := context.Background()

	session, err := svc.Enhance(ctx, "t1", models.ModeImprove)
	require.NoError(t, err)
	assert.True(t, session.Visible)

	view, err := svc.Accept(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, view.Suggestion)
	require.Len(t, view.Blocks, 1)
	assert.Equal(t, "Hello, world.", view.Blocks[0].Content)
	assert.NotEmpty(t, view.Blocks[0].ID)
	assert.False(t, view.Saving)
	assert.Equal(t, 1, remote.saveCount())
}

func TestExportWithoutBrowser(t *testing.T) {
	svc, _ := newTestEditorService(newFakeRemote())
	_, err := svc.Export(context.Background(), "t1")
	assert.True(t, stderrors.Is(err, export.ErrChromeMissing))
}

func TestNotifierLimit(t *testing.T) {
	n := NewNotifier(2)
	n.Add("info", "", "one")
	n.Add("info", "", "two")
	n.Add("info", "", "three")
	got := n.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[0].Message)
	assert.Equal(t, "three", got[1].Message)
}
