package models

import (
	"encoding/json"
	"fmt"
)

// Block is a single editable unit of note content
type Block struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// IsEmpty reports whether the block has no content
func (b Block) IsEmpty() bool {
	return b.Content == ""
}

// Topic represents a topic and its ordered notes as held by the remote store
type Topic struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Notes []Block `json:"notes"`
}

// UnmarshalJSON accepts the remote store's `_id` key as well as `id`, and notes
// given either as bare strings or as block objects.
func (t *Topic) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       string      `json:"id"`
		MongoID  string      `json:"_id"`
		Title    string      `json:"title"`
		RawNotes []NoteEntry `json:"notes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.ID = raw.ID
	if t.ID == "" {
		t.ID = raw.MongoID
	}
	t.Title = raw.Title
	t.Notes = make([]Block, 0, len(raw.RawNotes))
	for _, n := range raw.RawNotes {
		t.Notes = append(t.Notes, Block(n))
	}
	return nil
}

// NoteEntry is a note as returned by a collaborator: either a bare string or
// an {id, content} object. Bare strings decode with an empty ID.
type NoteEntry Block

// UnmarshalJSON implements json.Unmarshaler
func (n *NoteEntry) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*n = NoteEntry{Content: text}
		return nil
	}

	var obj struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("note entry is neither text nor block: %w", err)
	}
	n.ID = obj.ID
	if n.ID == "" {
		n.ID = obj.MongoID
	}
	n.Content = obj.Content
	return nil
}

// TopicSummary is a dashboard entry
type TopicSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// UnmarshalJSON accepts `_id` as well as `id`
func (s *TopicSummary) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
		Title   string `json:"title"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.ID = raw.ID
	if s.ID == "" {
		s.ID = raw.MongoID
	}
	s.Title = raw.Title
	return nil
}
