package editor

import (
	"encoding/json"
	"fmt"

	"notemaster/pkg/models"
)

// Intent is a user action on the document produced from a DOM event
type Intent interface {
	Kind() string
}

// EditText replaces the content of a block after an input event
type EditText struct {
	BlockID string `json:"blockId"`
	Content string `json:"content"`
	Caret   int    `json:"caret"`
}

// Split inserts an empty block after BlockID (Enter key)
type Split struct {
	BlockID string `json:"blockId"`
}

// Backspace deletes BlockID when it is empty and not the only block
type Backspace struct {
	BlockID string `json:"blockId"`
}

// ClickOutside is a click on the container outside every block
type ClickOutside struct{}

// Move reorders BlockID to index To
type Move struct {
	BlockID string `json:"blockId"`
	To      int    `json:"to"`
}

// Replace swaps the whole block list. It is applied internally when an
// enhancement is accepted or the topic is reloaded and is never decoded from
// client input.
type Replace struct {
	Blocks []models.Block `json:"blocks"`
}

// AppendNote adds a note added outside the editor as a new block. Like
// Replace it is applied internally only.
type AppendNote struct {
	Content string `json:"content"`
}

func (EditText) Kind() string     { return "edit" }
func (Split) Kind() string        { return "split" }
func (Backspace) Kind() string    { return "backspace" }
func (ClickOutside) Kind() string { return "click-outside" }
func (Move) Kind() string         { return "move" }
func (Replace) Kind() string      { return "replace" }
func (AppendNote) Kind() string   { return "append-note" }

// DecodeIntent reads a `{"type": ..., ...}` JSON intent sent by the client
func DecodeIntent(data []byte) (Intent, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode intent: %w", err)
	}

	var in Intent
	var err error
	switch head.Type {
	case "edit":
		var v EditText
		err = json.Unmarshal(data, &v)
		in = v
	case "split":
		var v Split
		err = json.Unmarshal(data, &v)
		in = v
	case "backspace":
		var v Backspace
		err = json.Unmarshal(data, &v)
		in = v
	case "click-outside":
		in = ClickOutside{}
	case "move":
		var v Move
		err = json.Unmarshal(data, &v)
		in = v
	default:
		return nil, fmt.Errorf("unknown intent type %q", head.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s intent: %w", head.Type, err)
	}
	return in, nil
}
