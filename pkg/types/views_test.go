package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notemaster/pkg/editor"
	"notemaster/pkg/models"
)

func TestNewEditorViewPlacesCaretInNode(t *testing.T) {
	doc := &editor.Document{
		TopicID: "t1",
		Title:   "Cells",
		Version: 3,
		Blocks: []models.Block{
			{ID: "a", Content: "line one\nline two"},
			{ID: "b", Content: ""},
		},
	}
	view := NewEditorView(doc, &editor.Focus{BlockID: "a", Caret: 12})

	require.Len(t, view.Blocks, 2)
	assert.Equal(t, []string{"line one\n", "line two"}, view.Blocks[0].Segments)
	assert.Equal(t, []string{""}, view.Blocks[1].Segments)
	require.NotNil(t, view.Focus)
	assert.Equal(t, editor.Caret{Node: 1, Offset: 3}, view.Focus.Caret)
	assert.Equal(t, uint64(3), view.Version)
}

func TestNewFocusViewUnknownBlock(t *testing.T) {
	doc := &editor.Document{Blocks: []models.Block{{ID: "a"}}}
	assert.Nil(t, NewFocusView(doc, &editor.Focus{BlockID: "zzz"}))
	assert.Nil(t, NewFocusView(doc, nil))
}

func TestTopicSummariesEncodeAsArray(t *testing.T) {
	data, err := json.Marshal(TopicListView{Topics: ConvertTopicSummaries(nil)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"topics":[]}`, string(data))
}
