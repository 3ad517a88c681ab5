// Package autosave persists editor documents after a quiet period. Each
// scheduled write is bound to the document version it was scheduled for and
// only runs if that version is still the latest one for the topic.
package autosave

import (
	"context"
	"log"
	"sync"
	"time"

	"notemaster/pkg/editor"
	"notemaster/pkg/errors"
	"notemaster/pkg/models"
	"notemaster/pkg/performance"
)

// Persister writes a topic's block list to the remote store
type Persister interface {
	UpdateNotes(ctx context.Context, topicID string, blocks []models.Block) error
}

// DraftStore keeps the payload of failed saves
type DraftStore interface {
	SaveDraft(ctx context.Context, draft models.Draft) error
	GetDraft(ctx context.Context, topicID string) (*models.Draft, error)
	DeleteDraft(ctx context.Context, topicID string) error
}

// Scheduler debounces document saves per topic
type Scheduler struct {
	debouncer *performance.Debouncer
	persister Persister
	drafts    DraftStore
	timeout   time.Duration

	mu     sync.Mutex
	latest map[string]uint64

	// OnSaved and OnError observe save outcomes; both may be nil.
	OnSaved func(topicID string, version uint64)
	OnError func(topicID string, err error)
}

// NewScheduler creates a scheduler. drafts may be nil.
func NewScheduler(delay, timeout time.Duration, persister Persister, drafts DraftStore) *Scheduler {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Scheduler{
		debouncer: performance.NewDebouncer(delay),
		persister: persister,
		drafts:    drafts,
		timeout:   timeout,
		latest:    make(map[string]uint64),
	}
}

// Schedule (re)starts the save timer for the document's topic. A document
// older than the latest one seen for the topic is ignored.
func (s *Scheduler) Schedule(doc *editor.Document) {
	topicID := doc.TopicID
	version := doc.Version
	blocks := editor.PersistableBlocks(doc.Blocks)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.advance(topicID, version) {
		return
	}
	// Held across Debounce so timers are replaced in version order.
	s.debouncer.Debounce(topicID, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_ = s.run(ctx, topicID, version, blocks)
	})
}

// advance raises the latest version of a topic. Called with s.mu held.
func (s *Scheduler) advance(topicID string, version uint64) bool {
	if latest, known := s.latest[topicID]; known && version < latest {
		return false
	}
	s.latest[topicID] = version
	return true
}

// Pending reports whether a save is waiting for the topic
func (s *Scheduler) Pending(topicID string) bool {
	return s.debouncer.Pending(topicID)
}

// Flush runs a pending save for the topic right away
func (s *Scheduler) Flush(topicID string) bool {
	return s.debouncer.Flush(topicID)
}

// FlushAll runs every pending save, e.g. on shutdown
func (s *Scheduler) FlushAll() {
	for _, key := range s.debouncer.Keys() {
		s.debouncer.Flush(key)
	}
}

// SaveNow persists the document immediately, superseding any pending save of
// the same or an older version. When a newer version is already scheduled the
// pending save carries the final state and SaveNow does nothing.
func (s *Scheduler) SaveNow(ctx context.Context, doc *editor.Document) error {
	s.mu.Lock()
	if !s.advance(doc.TopicID, doc.Version) {
		s.mu.Unlock()
		return nil
	}
	s.debouncer.Cancel(doc.TopicID)
	s.mu.Unlock()

	return s.run(ctx, doc.TopicID, doc.Version, editor.PersistableBlocks(doc.Blocks))
}

// Resubmit sends the outstanding draft of a topic, if any. It reports whether
// a draft was sent.
func (s *Scheduler) Resubmit(ctx context.Context, topicID string) (bool, error) {
	if s.drafts == nil {
		return false, nil
	}
	draft, err := s.drafts.GetDraft(ctx, topicID)
	if err != nil {
		return false, err
	}
	if draft == nil {
		return false, nil
	}

	s.mu.Lock()
	latest, known := s.latest[topicID]
	s.mu.Unlock()
	if known && latest > draft.Version {
		// A newer edit is already scheduled or saved; the draft is stale.
		return false, s.drafts.DeleteDraft(ctx, topicID)
	}

	return true, s.run(ctx, topicID, draft.Version, draft.Blocks)
}

// Forget drops the version bookkeeping of a closed topic
func (s *Scheduler) Forget(topicID string) {
	s.debouncer.Cancel(topicID)
	s.mu.Lock()
	delete(s.latest, topicID)
	s.mu.Unlock()
}

func (s *Scheduler) run(ctx context.Context, topicID string, version uint64, blocks []models.Block) error {
	s.mu.Lock()
	latest, known := s.latest[topicID]
	s.mu.Unlock()
	if known && latest != version {
		return nil
	}

	if err := s.persister.UpdateNotes(ctx, topicID, blocks); err != nil {
		appErr := s.recordFailure(ctx, topicID, version, blocks, err)
		if s.OnError != nil {
			s.OnError(topicID, appErr)
		}
		return appErr
	}

	if s.drafts != nil {
		if err := s.drafts.DeleteDraft(ctx, topicID); err != nil {
			log.Printf("Warning: failed to clear draft for topic %s: %v", topicID, err)
		}
	}
	if s.OnSaved != nil {
		s.OnSaved(topicID, version)
	}
	return nil
}

func (s *Scheduler) recordFailure(ctx context.Context, topicID string, version uint64, blocks []models.Block, cause error) *errors.AppError {
	appErr := errors.ErrSaveFailed.WithCause(cause).
		WithContext("topicId", topicID).
		WithContext("version", version)
	appErr.Log()

	if s.drafts == nil {
		return appErr
	}
	draft := models.Draft{
		TopicID:  topicID,
		Version:  version,
		Blocks:   blocks,
		LastErr:  cause.Error(),
		FailedAt: time.Now(),
	}
	// The request context may be what failed; the draft write gets its own.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.drafts.SaveDraft(saveCtx, draft); err != nil {
		log.Printf("Warning: failed to record draft for topic %s: %v", topicID, err)
	}
	return appErr
}
