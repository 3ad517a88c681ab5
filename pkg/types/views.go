package types

import (
	"notemaster/pkg/editor"
	"notemaster/pkg/enhance"
	"notemaster/pkg/models"
)

// BlockView is one block as the browser renders it: content plus the text
// nodes a plain-text render produces, so carets can be addressed per node
type BlockView struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Segments []string `json:"segments"`
}

// FocusView tells the browser which block to focus and where to put the caret
type FocusView struct {
	BlockID string       `json:"blockId"`
	Caret   editor.Caret `json:"caret"`
}

// EditorView is the projection of an open editor
type EditorView struct {
	TopicID    string               `json:"topicId"`
	Title      string               `json:"title"`
	Version    uint64               `json:"version"`
	Blocks     []BlockView          `json:"blocks"`
	Focus      *FocusView           `json:"focus,omitempty"`
	Changed    bool                 `json:"changed"`
	Composing  bool                 `json:"composing"`
	Saving     bool                 `json:"saving"`
	Suggestion *enhance.EditSession `json:"suggestion,omitempty"`
}

// NewBlockView projects a block
func NewBlockView(b models.Block) BlockView {
	return BlockView{ID: b.ID, Content: b.Content, Segments: editor.Segments(b.Content)}
}

// NewFocusView converts a reducer focus (character offset) into a node caret
// within the focused block. A nil focus or unknown block yields nil.
func NewFocusView(doc *editor.Document, focus *editor.Focus) *FocusView {
	if doc == nil || focus == nil {
		return nil
	}
	b, ok := doc.Block(focus.BlockID)
	if !ok {
		return nil
	}
	return &FocusView{
		BlockID: b.ID,
		Caret:   editor.LocateCaret(editor.Segments(b.Content), focus.Caret),
	}
}

// NewEditorView projects a document and an optional focus
func NewEditorView(doc *editor.Document, focus *editor.Focus) EditorView {
	view := EditorView{
		TopicID: doc.TopicID,
		Title:   doc.Title,
		Version: doc.Version,
		Blocks:  make([]BlockView, 0, len(doc.Blocks)),
		Focus:   NewFocusView(doc, focus),
	}
	for _, b := range doc.Blocks {
		view.Blocks = append(view.Blocks, NewBlockView(b))
	}
	return view
}

// TopicListView is the dashboard listing
type TopicListView struct {
	Topics []models.TopicSummary `json:"topics"`
	Query  string                `json:"query,omitempty"`
}

// ConvertTopicSummaries never returns nil so the list encodes as []
func ConvertTopicSummaries(topics []models.TopicSummary) []models.TopicSummary {
	if topics == nil {
		return []models.TopicSummary{}
	}
	return topics
}
