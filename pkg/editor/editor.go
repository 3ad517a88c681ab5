package editor

import (
	"sync"

	"notemaster/pkg/models"
)

// ChangeFunc is called with a snapshot after every change of the document
type ChangeFunc func(doc *Document)

// Editor holds the authoritative document of one topic and applies intents
// to it one at a time.
type Editor struct {
	mu        sync.Mutex
	notifyMu  sync.Mutex
	doc       *Document
	sync      *Synchronizer
	newID     IDFunc
	listeners []ChangeFunc
}

// New creates an editor for a loaded topic
func New(topic *models.Topic, newID IDFunc) *Editor {
	if newID == nil {
		newID = DefaultIDFunc
	}
	return &Editor{
		doc:   NewDocument(topic, newID),
		sync:  NewSynchronizer(),
		newID: newID,
	}
}

// OnChange registers a listener for document changes
func (e *Editor) OnChange(fn ChangeFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Snapshot returns a copy of the current document
func (e *Editor) Snapshot() *Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// Composing reports whether input is currently held back for IME composition
func (e *Editor) Composing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sync.Composing()
}

// Dispatch reduces an intent against the current document
func (e *Editor) Dispatch(in Intent) Result {
	e.mu.Lock()
	res := Reduce(e.doc, in, e.newID)
	return e.commit(res)
}

// Input handles a DOM input event. The second return is false when the event
// was suppressed by an ongoing composition.
func (e *Editor) Input(ev InputEvent) (Result, bool) {
	e.mu.Lock()
	edit, ok := e.sync.Input(ev)
	if !ok {
		snapshot := e.doc.Clone()
		e.mu.Unlock()
		return Result{Doc: snapshot}, false
	}
	res := Reduce(e.doc, edit, e.newID)
	return e.commit(res), true
}

// CompositionStart suspends input for blockID
func (e *Editor) CompositionStart(blockID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sync.CompositionStart(blockID)
}

// CompositionEnd applies the composed text
func (e *Editor) CompositionEnd(ev InputEvent) Result {
	e.mu.Lock()
	edit := e.sync.CompositionEnd(ev)
	res := Reduce(e.doc, edit, e.newID)
	return e.commit(res)
}

// commit stores the result and notifies listeners. Called with e.mu held;
// releases it before calling listeners. notifyMu is taken before e.mu is
// released so listeners see snapshots in version order. Listeners must not
// call back into the Editor.
func (e *Editor) commit(res Result) Result {
	if !res.Changed {
		snapshot := e.doc.Clone()
		e.mu.Unlock()
		return Result{Doc: snapshot, Focus: res.Focus}
	}

	e.doc = res.Doc
	listeners := append([]ChangeFunc(nil), e.listeners...)
	snapshot := e.doc.Clone()
	e.notifyMu.Lock()
	e.mu.Unlock()
	defer e.notifyMu.Unlock()

	for _, fn := range listeners {
		fn(snapshot.Clone())
	}
	return Result{Doc: snapshot, Focus: res.Focus, Changed: true}
}
