// Package enhance stages AI rewrites of a topic for review. A suggestion
// lives in an EditSession next to the document and only reaches the document
// when accepted.
package enhance

import (
	"context"
	"log"
	"sync"

	"notemaster/pkg/editor"
	"notemaster/pkg/errors"
	"notemaster/pkg/models"
)

// Enhancer requests a rewrite of a topic from the AI service
type Enhancer interface {
	Enhance(ctx context.Context, topicID string, mode models.EnhanceMode) (*models.EnhanceResult, error)
}

// Saver persists a document immediately
type Saver interface {
	SaveNow(ctx context.Context, doc *editor.Document) error
}

// EditSession is a suggestion awaiting review
type EditSession struct {
	Mode     models.EnhanceMode `json:"mode"`
	Original []models.Block     `json:"originalBlocks"`
	Proposed []models.Block     `json:"proposedBlocks"`
	Visible  bool               `json:"visible"`
	Message  string             `json:"message,omitempty"`
}

func (s *EditSession) clone() *EditSession {
	c := *s
	c.Original = append([]models.Block(nil), s.Original...)
	c.Proposed = append([]models.Block(nil), s.Proposed...)
	return &c
}

// Reconciler runs the request/accept/reject cycle for one topic
type Reconciler struct {
	mu       sync.Mutex
	topicID  string
	editor   *editor.Editor
	enhancer Enhancer
	saver    Saver

	requesting bool
	session    *EditSession
}

// NewReconciler creates a reconciler for the topic edited by ed
func NewReconciler(topicID string, ed *editor.Editor, enhancer Enhancer, saver Saver) *Reconciler {
	return &Reconciler{
		topicID:  topicID,
		editor:   ed,
		enhancer: enhancer,
		saver:    saver,
	}
}

// Session returns the suggestion under review, or nil
func (r *Reconciler) Session() *EditSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return nil
	}
	return r.session.clone()
}

// Requesting reports whether a request is in flight
func (r *Reconciler) Requesting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requesting
}

// Request asks the AI service for a rewrite and stages it. On failure the
// document and any session stay as they were.
func (r *Reconciler) Request(ctx context.Context, mode models.EnhanceMode) (*EditSession, error) {
	if _, err := models.ParseEnhanceMode(string(mode)); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeValidation, "ENHANCE_MODE_INVALID", "unknown enhancement mode").
			WithUserMessage("Please choose a valid enhancement mode").
			WithContext("mode", string(mode))
	}

	r.mu.Lock()
	if r.requesting || r.session != nil {
		r.mu.Unlock()
		return nil, errors.ErrEnhancePending.WithContext("topicId", r.topicID)
	}
	r.requesting = true
	r.mu.Unlock()

	result, err := r.enhancer.Enhance(ctx, r.topicID, mode)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.requesting = false
	if err != nil {
		return nil, err
	}

	r.session = &EditSession{
		Mode:     mode,
		Original: toBlocks(result.OriginalNotes),
		Proposed: toBlocks(result.ImprovedNotes),
		Visible:  true,
		Message:  result.Message,
	}
	log.Printf("Staged %s suggestion for topic %s (%d blocks)", mode, r.topicID, len(r.session.Proposed))
	return r.session.clone(), nil
}

// Accept replaces the document with the proposed blocks and saves it right
// away. The session is discarded even if the save fails; the failure is
// then left to the autosave outbox.
func (r *Reconciler) Accept(ctx context.Context) (*editor.Document, error) {
	r.mu.Lock()
	session := r.session
	r.session = nil
	r.mu.Unlock()

	if session == nil {
		return nil, errors.ErrNoEnhancement.WithContext("topicId", r.topicID)
	}

	res := r.editor.Dispatch(editor.Replace{Blocks: session.Proposed})
	if r.saver == nil {
		return res.Doc, nil
	}
	if err := r.saver.SaveNow(ctx, res.Doc); err != nil {
		return res.Doc, err
	}
	return res.Doc, nil
}

// Reject drops the suggestion without touching the document
func (r *Reconciler) Reject() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return errors.ErrNoEnhancement.WithContext("topicId", r.topicID)
	}
	r.session = nil
	return nil
}

func toBlocks(entries []models.NoteEntry) []models.Block {
	blocks := make([]models.Block, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, models.Block(e))
	}
	return blocks
}
