package editor

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/jaswdr/faker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notemaster/pkg/models"
)

func seqIDs(prefix string) IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func docOf(blocks ...models.Block) *Document {
	return &Document{TopicID: "t1", Title: "Topic", Blocks: blocks}
}

func TestNewDocumentEmptyTopicHasOneBlock(t *testing.T) {
	doc := NewDocument(&models.Topic{ID: "t1", Title: "Empty"}, seqIDs("n"))
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "n1", doc.Blocks[0].ID)
	assert.Empty(t, doc.Blocks[0].Content)

	nilDoc := NewDocument(nil, seqIDs("n"))
	assert.Len(t, nilDoc.Blocks, 1)
}

func TestNewDocumentRepairsIDs(t *testing.T) {
	doc := NewDocument(&models.Topic{Notes: []models.Block{
		{ID: "a", Content: "one"},
		{Content: "bare"},
		{ID: "a", Content: "dup"},
	}}, seqIDs("n"))

	assert.Equal(t, []string{"a", "n1", "n2"}, doc.IDs())
}

func TestSplitAtEndOfBlock(t *testing.T) {
	doc := docOf(models.Block{ID: "a", Content: "Hello"})

	res := Reduce(doc, Split{BlockID: "a"}, seqIDs("new"))

	require.True(t, res.Changed)
	assert.Equal(t, []models.Block{{ID: "a", Content: "Hello"}, {ID: "new1", Content: ""}}, res.Doc.Blocks)
	assert.Equal(t, &Focus{BlockID: "new1"}, res.Focus)
	assert.Equal(t, uint64(1), res.Doc.Version)
	assert.Len(t, doc.Blocks, 1, "input document must not change")
}

func TestSplitInsertsAfterCurrent(t *testing.T) {
	doc := docOf(models.Block{ID: "a", Content: "1"}, models.Block{ID: "b", Content: "2"})

	res := Reduce(doc, Split{BlockID: "a"}, seqIDs("x"))

	assert.Equal(t, []string{"a", "x1", "b"}, res.Doc.IDs())
}

func TestSplitSuppressedWhenTrailingBlockEmpty(t *testing.T) {
	doc := docOf(models.Block{ID: "a", Content: "Hello"}, models.Block{ID: "b"})

	res := Reduce(doc, Split{BlockID: "a"}, seqIDs("x"))

	assert.False(t, res.Changed)
	assert.Nil(t, res.Focus)
	assert.Same(t, doc, res.Doc)
}

func TestBackspaceEmptySecondBlock(t *testing.T) {
	doc := docOf(models.Block{ID: "a", Content: "Hello"}, models.Block{ID: "new1"})

	res := Reduce(doc, Backspace{BlockID: "new1"}, nil)

	require.True(t, res.Changed)
	assert.Equal(t, []models.Block{{ID: "a", Content: "Hello"}}, res.Doc.Blocks)
	assert.Equal(t, &Focus{BlockID: "a", Caret: 5}, res.Focus)
}

func TestBackspaceFirstBlockFocusesNext(t *testing.T) {
	doc := docOf(models.Block{ID: "a"}, models.Block{ID: "b", Content: "x"})

	res := Reduce(doc, Backspace{BlockID: "a"}, nil)

	assert.Equal(t, []string{"b"}, res.Doc.IDs())
	assert.Equal(t, &Focus{BlockID: "b"}, res.Focus)
}

func TestBackspaceOnlyBlockIsNoop(t *testing.T) {
	doc := docOf(models.Block{ID: "a"})

	res := Reduce(doc, Backspace{BlockID: "a"}, nil)

	assert.False(t, res.Changed)
	assert.Len(t, res.Doc.Blocks, 1)
}

func TestBackspaceNonEmptyBlockIsNoop(t *testing.T) {
	doc := docOf(models.Block{ID: "a", Content: "x"}, models.Block{ID: "b", Content: "y"})

	res := Reduce(doc, Backspace{BlockID: "b"}, nil)

	assert.False(t, res.Changed)
}

func TestClickOutside(t *testing.T) {
	doc := docOf(models.Block{ID: "a", Content: "x"})

	res := Reduce(doc, ClickOutside{}, seqIDs("c"))
	require.True(t, res.Changed)
	assert.Equal(t, []string{"a", "c1"}, res.Doc.IDs())
	assert.Equal(t, "c1", res.Focus.BlockID)

	again := Reduce(res.Doc, ClickOutside{}, seqIDs("d"))
	assert.False(t, again.Changed)
	assert.Equal(t, "c1", again.Focus.BlockID)
}

func TestEditText(t *testing.T) {
	doc := docOf(models.Block{ID: "a", Content: "Hel"}, models.Block{ID: "b", Content: "z"})

	res := Reduce(doc, EditText{BlockID: "a", Content: "Hello", Caret: 99}, nil)

	require.True(t, res.Changed)
	assert.Equal(t, "Hello", res.Doc.Blocks[0].Content)
	assert.Equal(t, "z", res.Doc.Blocks[1].Content)
	assert.Equal(t, &Focus{BlockID: "a", Caret: 5}, res.Focus)
	assert.Equal(t, "Hel", doc.Blocks[0].Content)

	same := Reduce(res.Doc, EditText{BlockID: "a", Content: "Hello", Caret: 2}, nil)
	assert.False(t, same.Changed)
	assert.Equal(t, 2, same.Focus.Caret)

	unknown := Reduce(doc, EditText{BlockID: "zz", Content: "x"}, nil)
	assert.False(t, unknown.Changed)
}

func TestMove(t *testing.T) {
	doc := docOf(
		models.Block{ID: "a", Content: "1"},
		models.Block{ID: "b", Content: "2"},
		models.Block{ID: "c", Content: "3"},
	)

	res := Reduce(doc, Move{BlockID: "a", To: 2}, nil)
	assert.Equal(t, []string{"b", "c", "a"}, res.Doc.IDs())

	res = Reduce(doc, Move{BlockID: "c", To: -4}, nil)
	assert.Equal(t, []string{"c", "a", "b"}, res.Doc.IDs())

	res = Reduce(doc, Move{BlockID: "b", To: 1}, nil)
	assert.False(t, res.Changed)
}

func TestAppendNote(t *testing.T) {
	doc := docOf(models.Block{ID: "a", Content: "Hello"})
	res := Reduce(doc, AppendNote{Content: "added"}, seqIDs("n"))
	require.True(t, res.Changed)
	assert.Nil(t, res.Focus)
	assert.Equal(t, []models.Block{{ID: "a", Content: "Hello"}, {ID: "n1", Content: "added"}}, res.Doc.Blocks)

	empty := docOf(models.Block{ID: "e"})
	res = Reduce(empty, AppendNote{Content: "first"}, seqIDs("n"))
	assert.Equal(t, []models.Block{{ID: "e", Content: "first"}}, res.Doc.Blocks)

	res = Reduce(doc, AppendNote{}, seqIDs("n"))
	assert.False(t, res.Changed)
}

func TestReplaceNormalizes(t *testing.T) {
	doc := docOf(models.Block{ID: "a", Content: "x"})

	res := Reduce(doc, Replace{}, seqIDs("r"))
	assert.Equal(t, []models.Block{{ID: "r1"}}, res.Doc.Blocks)

	res = Reduce(doc, Replace{Blocks: []models.Block{{Content: "p"}, {ID: "q", Content: "q"}}}, seqIDs("r"))
	assert.Equal(t, []string{"r1", "q"}, res.Doc.IDs())
}

// Random split/backspace/edit sequences never drop to zero blocks and never
// change the identifier of a block they did not delete.
func TestStructuralEditsPreserveIdentity(t *testing.T) {
	f := faker.NewWithSeed(rand.NewSource(7))
	newID := seqIDs("g")
	doc := docOf(models.Block{ID: "root", Content: "start"})

	for step := 0; step < 500; step++ {
		target := doc.Blocks[f.IntBetween(0, len(doc.Blocks)-1)]

		var in Intent
		switch f.IntBetween(0, 4) {
		case 0:
			in = Split{BlockID: target.ID}
		case 1:
			in = Backspace{BlockID: target.ID}
		case 2:
			in = EditText{BlockID: target.ID, Content: f.Lorem().Sentence(3)}
		case 3:
			in = EditText{BlockID: target.ID, Content: ""}
		default:
			in = ClickOutside{}
		}

		before := make(map[string]bool)
		for _, id := range doc.IDs() {
			before[id] = true
		}

		res := Reduce(doc, in, newID)
		require.NotEmpty(t, res.Doc.Blocks, "step %d", step)

		survivors := 0
		for _, id := range res.Doc.IDs() {
			if before[id] {
				survivors++
			}
		}
		switch in.(type) {
		case Backspace:
			if res.Changed {
				assert.Equal(t, len(before)-1, survivors, "step %d", step)
			} else {
				assert.Equal(t, len(before), survivors, "step %d", step)
			}
		default:
			assert.Equal(t, len(before), survivors, "step %d", step)
		}
		doc = res.Doc
	}
}

func TestPersistableBlocks(t *testing.T) {
	blocks := []models.Block{{ID: "a", Content: "x"}, {ID: "b"}, {ID: "c", Content: "y"}}
	assert.Equal(t, []models.Block{{ID: "a", Content: "x"}, {ID: "c", Content: "y"}}, PersistableBlocks(blocks))

	allEmpty := []models.Block{{ID: "a"}, {ID: "b"}}
	assert.Equal(t, allEmpty, PersistableBlocks(allEmpty))
}
