package editor

import "strings"

// InputEvent is a DOM input event inside a block's editable region: the
// block's text nodes after the edit and the caret position among them.
type InputEvent struct {
	BlockID  string   `json:"blockId"`
	Segments []string `json:"segments"`
	Caret    Caret    `json:"caret"`
}

// Synchronizer turns input events into EditText intents, holding input back
// while an IME composition is in progress.
type Synchronizer struct {
	composing      bool
	composingBlock string
}

// NewSynchronizer creates a synchronizer
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{}
}

// Composing reports whether an IME composition is in progress
func (s *Synchronizer) Composing() bool {
	return s.composing
}

// CompositionStart suspends input handling for blockID
func (s *Synchronizer) CompositionStart(blockID string) {
	s.composing = true
	s.composingBlock = blockID
}

// CompositionEnd resumes input handling and processes the final state of the
// composed text as a single input.
func (s *Synchronizer) CompositionEnd(ev InputEvent) EditText {
	s.composing = false
	s.composingBlock = ""
	return capture(ev)
}

// Input captures an input event. It returns false while composing.
func (s *Synchronizer) Input(ev InputEvent) (EditText, bool) {
	if s.composing {
		return EditText{}, false
	}
	return capture(ev), true
}

func capture(ev InputEvent) EditText {
	return EditText{
		BlockID: ev.BlockID,
		Content: strings.Join(ev.Segments, ""),
		Caret:   CaretOffset(ev.Segments, ev.Caret),
	}
}
