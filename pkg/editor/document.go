// Package editor holds the block editor: the document model, a pure reducer for
// structural edits, and the synchronizer that turns DOM input into edit intents.
package editor

import (
	"notemaster/pkg/models"
	"notemaster/pkg/utils"
)

// IDFunc generates block identifiers
type IDFunc func() string

// DefaultIDFunc generates UUID block identifiers
var DefaultIDFunc IDFunc = utils.NewBlockID

// Document is the authoritative, ordered block list of a topic
type Document struct {
	TopicID string         `json:"topicId"`
	Title   string         `json:"title"`
	Blocks  []models.Block `json:"blocks"`
	Version uint64         `json:"version"`
}

// NewDocument builds a document from a loaded topic. A topic without notes
// becomes a single empty block.
func NewDocument(topic *models.Topic, newID IDFunc) *Document {
	if newID == nil {
		newID = DefaultIDFunc
	}
	doc := &Document{}
	var notes []models.Block
	if topic != nil {
		doc.TopicID = topic.ID
		doc.Title = topic.Title
		notes = topic.Notes
	}
	doc.Blocks = normalizeBlocks(notes, newID)
	return doc
}

// normalizeBlocks copies blocks, assigning fresh IDs to entries with a missing
// or duplicate ID, and never returns an empty list.
func normalizeBlocks(in []models.Block, newID IDFunc) []models.Block {
	out := make([]models.Block, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, b := range in {
		if b.ID == "" || seen[b.ID] {
			b.ID = newID()
		}
		seen[b.ID] = true
		out = append(out, b)
	}
	if len(out) == 0 {
		out = append(out, models.Block{ID: newID()})
	}
	return out
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	c := *d
	c.Blocks = make([]models.Block, len(d.Blocks))
	copy(c.Blocks, d.Blocks)
	return &c
}

// Index returns the position of the block with the given ID, or -1
func (d *Document) Index(id string) int {
	for i, b := range d.Blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Block returns the block with the given ID
func (d *Document) Block(id string) (models.Block, bool) {
	if i := d.Index(id); i >= 0 {
		return d.Blocks[i], true
	}
	return models.Block{}, false
}

// Last returns the trailing block
func (d *Document) Last() models.Block {
	return d.Blocks[len(d.Blocks)-1]
}

// IDs lists block identifiers in document order
func (d *Document) IDs() []string {
	ids := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		ids[i] = b.ID
	}
	return ids
}

// PersistableBlocks returns the blocks worth sending to the remote store:
// empty blocks are dropped unless every block is empty.
func PersistableBlocks(blocks []models.Block) []models.Block {
	out := make([]models.Block, 0, len(blocks))
	for _, b := range blocks {
		if !b.IsEmpty() {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		out = append(out, blocks...)
	}
	return out
}
