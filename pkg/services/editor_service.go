package services

import (
	"context"
	"log"
	"sort"
	"sync"

	"notemaster/pkg/autosave"
	"notemaster/pkg/editor"
	"notemaster/pkg/enhance"
	"notemaster/pkg/export"
	"notemaster/pkg/models"
	"notemaster/pkg/types"
)

// OpenEditor is the live state of one topic page
type OpenEditor struct {
	Editor  *editor.Editor
	Enhance *enhance.Reconciler
}

// EditorService keeps one editor per open topic and wires it to autosave,
// enhancement and export
type EditorService struct {
	mu       sync.Mutex
	open     map[string]*OpenEditor
	topics   *TopicService
	enhancer enhance.Enhancer
	autosave *autosave.Scheduler
	exporter *export.Exporter
	notifier *Notifier
	newID    editor.IDFunc
}

// NewEditorService creates an editor service. exporter may be nil when no
// browser is available; Export then reports the missing dependency.
func NewEditorService(topics *TopicService, enhancer enhance.Enhancer, scheduler *autosave.Scheduler,
	exporter *export.Exporter, notifier *Notifier) *EditorService {
	s := &EditorService{
		open:     make(map[string]*OpenEditor),
		topics:   topics,
		enhancer: enhancer,
		autosave: scheduler,
		exporter: exporter,
		notifier: notifier,
		newID:    editor.DefaultIDFunc,
	}
	scheduler.OnError = func(topicID string, err error) {
		notifier.Error(topicID, err)
	}
	scheduler.OnSaved = func(topicID string, version uint64) {
		log.Printf("Saved topic %s at version %d", topicID, version)
	}
	return s
}

// Open returns the editor of a topic, loading the topic on first use
func (s *EditorService) Open(ctx context.Context, topicID string) (*OpenEditor, error) {
	s.mu.Lock()
	if oe, ok := s.open[topicID]; ok {
		s.mu.Unlock()
		return oe, nil
	}
	s.mu.Unlock()

	topic, err := s.topics.Get(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if topic.ID == "" {
		topic.ID = topicID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have opened it while we were loading.
	if oe, ok := s.open[topicID]; ok {
		return oe, nil
	}

	ed := editor.New(topic, s.newID)
	ed.OnChange(func(doc *editor.Document) {
		s.autosave.Schedule(doc)
	})
	oe := &OpenEditor{
		Editor:  ed,
		Enhance: enhance.NewReconciler(topicID, ed, s.enhancer, s.autosave),
	}
	s.open[topicID] = oe
	log.Printf("Opened editor for topic %s (%d blocks)", topicID, len(ed.Snapshot().Blocks))
	return oe, nil
}

// OpenTopics lists the IDs of open editors
func (s *EditorService) OpenTopics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.open))
	for id := range s.open {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// View returns the projection of a topic's editor
func (s *EditorService) View(ctx context.Context, topicID string) (types.EditorView, error) {
	oe, err := s.Open(ctx, topicID)
	if err != nil {
		return types.EditorView{}, err
	}
	return s.view(oe, editor.Result{Doc: oe.Editor.Snapshot()}), nil
}

// Dispatch applies an intent to a topic's editor
func (s *EditorService) Dispatch(ctx context.Context, topicID string, in editor.Intent) (types.EditorView, error) {
	oe, err := s.Open(ctx, topicID)
	if err != nil {
		return types.EditorView{}, err
	}
	return s.view(oe, oe.Editor.Dispatch(in)), nil
}

// Input applies a DOM input event. Input during composition is held back.
func (s *EditorService) Input(ctx context.Context, topicID string, ev editor.InputEvent) (types.EditorView, error) {
	oe, err := s.Open(ctx, topicID)
	if err != nil {
		return types.EditorView{}, err
	}
	res, _ := oe.Editor.Input(ev)
	return s.view(oe, res), nil
}

// CompositionStart suspends input for a block
func (s *EditorService) CompositionStart(ctx context.Context, topicID, blockID string) (types.EditorView, error) {
	oe, err := s.Open(ctx, topicID)
	if err != nil {
		return types.EditorView{}, err
	}
	oe.Editor.CompositionStart(blockID)
	return s.view(oe, editor.Result{Doc: oe.Editor.Snapshot()}), nil
}

// CompositionEnd applies the composed text as one input
func (s *EditorService) CompositionEnd(ctx context.Context, topicID string, ev editor.InputEvent) (types.EditorView, error) {
	oe, err := s.Open(ctx, topicID)
	if err != nil {
		return types.EditorView{}, err
	}
	return s.view(oe, oe.Editor.CompositionEnd(ev)), nil
}

// AddNote adds a note from the dashboard. When the topic has an open editor
// the note becomes a block of the live document and is saved right away, so
// the editor's next save cannot drop it. Otherwise it is posted to the topic.
func (s *EditorService) AddNote(ctx context.Context, topicID, content string) error {
	s.mu.Lock()
	oe, ok := s.open[topicID]
	s.mu.Unlock()
	if !ok {
		return s.topics.AddNote(ctx, topicID, content)
	}

	if err := s.topics.validateNote(topicID, content); err != nil {
		return err
	}
	res := oe.Editor.Dispatch(editor.AppendNote{Content: content})
	if err := s.autosave.SaveNow(ctx, res.Doc); err != nil {
		logError(err)
		return err
	}
	log.Printf("Note added to open topic %s", topicID)
	return nil
}

// Enhance requests an AI suggestion for a topic
func (s *EditorService) Enhance(ctx context.Context, topicID string, mode models.EnhanceMode) (*enhance.EditSession, error) {
	oe, err := s.Open(ctx, topicID)
	if err != nil {
		return nil, err
	}
	session, err := oe.Enhance.Request(ctx, mode)
	if err != nil {
		logError(err)
		return nil, err
	}
	return session, nil
}

// Accept commits the pending suggestion
func (s *EditorService) Accept(ctx context.Context, topicID string) (types.EditorView, error) {
	oe, err := s.Open(ctx, topicID)
	if err != nil {
		return types.EditorView{}, err
	}
	doc, err := oe.Enhance.Accept(ctx)
	if err != nil {
		logError(err)
		if doc == nil {
			return types.EditorView{}, err
		}
		// The document was replaced but not saved; the outbox has it.
		return s.view(oe, editor.Result{Doc: doc, Changed: true}), err
	}
	return s.view(oe, editor.Result{Doc: doc, Changed: true}), nil
}

// Reject discards the pending suggestion
func (s *EditorService) Reject(ctx context.Context, topicID string) (types.EditorView, error) {
	oe, err := s.Open(ctx, topicID)
	if err != nil {
		return types.EditorView{}, err
	}
	if err := oe.Enhance.Reject(); err != nil {
		return types.EditorView{}, err
	}
	return s.view(oe, editor.Result{Doc: oe.Editor.Snapshot()}), nil
}

// Resubmit sends the outstanding draft of a topic
func (s *EditorService) Resubmit(ctx context.Context, topicID string) (bool, error) {
	sent, err := s.autosave.Resubmit(ctx, topicID)
	if err != nil {
		logError(err)
		return sent, err
	}
	return sent, nil
}

// Export renders a topic to PDF. An open editor's current state is exported;
// otherwise the topic is loaded.
func (s *EditorService) Export(ctx context.Context, topicID string) (*export.Result, error) {
	if s.exporter == nil {
		return nil, export.ErrChromeMissing
	}

	var doc *editor.Document
	s.mu.Lock()
	oe, ok := s.open[topicID]
	s.mu.Unlock()
	if ok {
		doc = oe.Editor.Snapshot()
	} else {
		topic, err := s.topics.Get(ctx, topicID)
		if err != nil {
			return nil, err
		}
		doc = editor.NewDocument(topic, s.newID)
	}

	result, err := s.exporter.Export(ctx, doc)
	if err != nil {
		logError(err)
		return nil, err
	}
	return result, nil
}

// Close flushes the topic's pending save and drops its editor. It reports
// whether a save was flushed.
func (s *EditorService) Close(topicID string) bool {
	s.mu.Lock()
	_, ok := s.open[topicID]
	delete(s.open, topicID)
	s.mu.Unlock()

	flushed := s.autosave.Flush(topicID)
	s.autosave.Forget(topicID)
	if ok {
		log.Printf("Closed editor for topic %s (flushed: %v)", topicID, flushed)
	}
	return flushed
}

// CloseAll closes every open editor, e.g. on shutdown
func (s *EditorService) CloseAll() {
	for _, id := range s.OpenTopics() {
		s.Close(id)
	}
	s.autosave.FlushAll()
}

func (s *EditorService) view(oe *OpenEditor, res editor.Result) types.EditorView {
	v := types.NewEditorView(res.Doc, res.Focus)
	v.Changed = res.Changed
	v.Composing = oe.Editor.Composing()
	v.Saving = s.autosave.Pending(res.Doc.TopicID)
	v.Suggestion = oe.Enhance.Session()
	return v
}
