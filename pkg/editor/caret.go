package editor

import "unicode/utf8"

// Caret is a DOM caret position: a text node index within a block and a
// character offset inside that node.
type Caret struct {
	Node   int `json:"node"`
	Offset int `json:"offset"`
}

// CaretOffset converts a (node, offset) position into the number of
// characters preceding it within the block.
func CaretOffset(segments []string, c Caret) int {
	if len(segments) == 0 || c.Node < 0 {
		return 0
	}
	if c.Node >= len(segments) {
		return runeLen(segments...)
	}

	offset := runeLen(segments[:c.Node]...)
	n := utf8.RuneCountInString(segments[c.Node])
	switch {
	case c.Offset < 0:
	case c.Offset > n:
		offset += n
	default:
		offset += c.Offset
	}
	return offset
}

// LocateCaret walks the text nodes and returns the first node whose
// cumulative length reaches offset. Offsets past the end clamp to the end of
// the last node.
func LocateCaret(segments []string, offset int) Caret {
	if len(segments) == 0 || offset <= 0 {
		return Caret{}
	}

	cumulative := 0
	for i, seg := range segments {
		n := utf8.RuneCountInString(seg)
		if cumulative+n >= offset {
			return Caret{Node: i, Offset: offset - cumulative}
		}
		cumulative += n
	}

	last := len(segments) - 1
	return Caret{Node: last, Offset: utf8.RuneCountInString(segments[last])}
}

// Segments splits block content into the text nodes a plain-text render
// produces: one node per line, each keeping its trailing newline.
func Segments(content string) []string {
	if content == "" {
		return []string{""}
	}
	var out []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			out = append(out, content[start:i+1])
			start = i + 1
		}
	}
	if start < len(content) {
		out = append(out, content[start:])
	}
	return out
}

func runeLen(segments ...string) int {
	n := 0
	for _, s := range segments {
		n += utf8.RuneCountInString(s)
	}
	return n
}
