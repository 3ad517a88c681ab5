package editor

import (
	"unicode/utf8"

	"notemaster/pkg/models"
)

// Focus tells the renderer where to put the caret after an intent
type Focus struct {
	BlockID string `json:"blockId"`
	Caret   int    `json:"caret"`
}

// Result is the outcome of reducing one intent
type Result struct {
	Doc     *Document
	Focus   *Focus
	Changed bool
}

// Reduce computes the next document for an intent. The input document is never
// modified; untouched blocks keep their identifiers.
func Reduce(doc *Document, in Intent, newID IDFunc) Result {
	if newID == nil {
		newID = DefaultIDFunc
	}

	var res Result
	switch v := in.(type) {
	case EditText:
		res = reduceEdit(doc, v)
	case Split:
		res = reduceSplit(doc, v, newID)
	case Backspace:
		res = reduceBackspace(doc, v)
	case ClickOutside:
		res = reduceClickOutside(doc, newID)
	case Move:
		res = reduceMove(doc, v)
	case AppendNote:
		res = reduceAppendNote(doc, v, newID)
	case Replace:
		next := doc.Clone()
		next.Blocks = normalizeBlocks(v.Blocks, newID)
		res = Result{Doc: next, Changed: true}
	default:
		res = Result{Doc: doc}
	}

	if res.Changed {
		res.Doc.Version = doc.Version + 1
	}
	return res
}

func reduceEdit(doc *Document, in EditText) Result {
	i := doc.Index(in.BlockID)
	if i < 0 {
		return Result{Doc: doc}
	}

	caret := in.Caret
	if n := utf8.RuneCountInString(in.Content); caret > n {
		caret = n
	}
	if caret < 0 {
		caret = 0
	}
	focus := &Focus{BlockID: in.BlockID, Caret: caret}

	if doc.Blocks[i].Content == in.Content {
		return Result{Doc: doc, Focus: focus}
	}
	next := doc.Clone()
	next.Blocks[i].Content = in.Content
	return Result{Doc: next, Focus: focus, Changed: true}
}

func reduceSplit(doc *Document, in Split, newID IDFunc) Result {
	i := doc.Index(in.BlockID)
	if i < 0 || doc.Last().IsEmpty() {
		return Result{Doc: doc}
	}

	block := models.Block{ID: newID()}
	next := doc.Clone()
	next.Blocks = make([]models.Block, 0, len(doc.Blocks)+1)
	next.Blocks = append(next.Blocks, doc.Blocks[:i+1]...)
	next.Blocks = append(next.Blocks, block)
	next.Blocks = append(next.Blocks, doc.Blocks[i+1:]...)
	return Result{Doc: next, Focus: &Focus{BlockID: block.ID}, Changed: true}
}

func reduceBackspace(doc *Document, in Backspace) Result {
	i := doc.Index(in.BlockID)
	if i < 0 || len(doc.Blocks) <= 1 || !doc.Blocks[i].IsEmpty() {
		return Result{Doc: doc}
	}

	next := doc.Clone()
	next.Blocks = append(next.Blocks[:i:i], doc.Blocks[i+1:]...)

	var focus *Focus
	if i > 0 {
		prev := next.Blocks[i-1]
		focus = &Focus{BlockID: prev.ID, Caret: utf8.RuneCountInString(prev.Content)}
	} else {
		focus = &Focus{BlockID: next.Blocks[0].ID}
	}
	return Result{Doc: next, Focus: focus, Changed: true}
}

func reduceClickOutside(doc *Document, newID IDFunc) Result {
	last := doc.Last()
	if last.IsEmpty() {
		return Result{Doc: doc, Focus: &Focus{BlockID: last.ID}}
	}

	block := models.Block{ID: newID()}
	next := doc.Clone()
	next.Blocks = append(next.Blocks, block)
	return Result{Doc: next, Focus: &Focus{BlockID: block.ID}, Changed: true}
}

// reduceAppendNote fills a lone empty block, otherwise appends after the
// last block. Focus is left where it was.
func reduceAppendNote(doc *Document, in AppendNote, newID IDFunc) Result {
	if in.Content == "" {
		return Result{Doc: doc}
	}
	next := doc.Clone()
	if len(next.Blocks) == 1 && next.Blocks[0].IsEmpty() {
		next.Blocks[0].Content = in.Content
		return Result{Doc: next, Changed: true}
	}
	next.Blocks = append(next.Blocks, models.Block{ID: newID(), Content: in.Content})
	return Result{Doc: next, Changed: true}
}

func reduceMove(doc *Document, in Move) Result {
	from := doc.Index(in.BlockID)
	if from < 0 {
		return Result{Doc: doc}
	}
	to := in.To
	if to < 0 {
		to = 0
	}
	if to > len(doc.Blocks)-1 {
		to = len(doc.Blocks) - 1
	}
	if to == from {
		return Result{Doc: doc}
	}

	moved := doc.Blocks[from]
	rest := make([]models.Block, 0, len(doc.Blocks)-1)
	rest = append(rest, doc.Blocks[:from]...)
	rest = append(rest, doc.Blocks[from+1:]...)

	next := doc.Clone()
	next.Blocks = make([]models.Block, 0, len(doc.Blocks))
	next.Blocks = append(next.Blocks, rest[:to]...)
	next.Blocks = append(next.Blocks, moved)
	next.Blocks = append(next.Blocks, rest[to:]...)
	return Result{Doc: next, Focus: &Focus{BlockID: moved.ID}, Changed: true}
}
