package models

import "fmt"

// EnhanceMode selects the kind of AI rewrite
type EnhanceMode string

const (
	ModeImprove    EnhanceMode = "improve"
	ModeSummarize  EnhanceMode = "summarize"
	ModeExpand     EnhanceMode = "expand"
	ModeFormal     EnhanceMode = "formal"
	ModeFlashcards EnhanceMode = "flashcards"
	ModeSimplify   EnhanceMode = "simplify"
)

// EnhanceModes lists every supported mode in display order
var EnhanceModes = []EnhanceMode{
	ModeImprove,
	ModeSummarize,
	ModeExpand,
	ModeFormal,
	ModeFlashcards,
	ModeSimplify,
}

// ParseEnhanceMode validates a mode name
func ParseEnhanceMode(s string) (EnhanceMode, error) {
	for _, m := range EnhanceModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown enhancement mode %q", s)
}

// EnhanceResult is the AI collaborator's answer
type EnhanceResult struct {
	OriginalNotes []NoteEntry `json:"originalNotes"`
	ImprovedNotes []NoteEntry `json:"improvedNotes"`
	Message       string      `json:"message"`
}
