package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"notemaster/pkg/editor"
	"notemaster/pkg/errors"
	"notemaster/pkg/models"
	"notemaster/pkg/services"
	"notemaster/pkg/types"
)

// APIHandlers contains API endpoint handlers
type APIHandlers struct {
	topics   *services.TopicService
	editors  *services.EditorService
	notifier *services.Notifier
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(topics *services.TopicService, editors *services.EditorService, notifier *services.Notifier) *APIHandlers {
	return &APIHandlers{
		topics:   topics,
		editors:  editors,
		notifier: notifier,
	}
}

// ListTopicsHandler returns the dashboard, filtered by ?q=
func (h *APIHandlers) ListTopicsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	topics, err := h.topics.List(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.TopicListView{Topics: types.ConvertTopicSummaries(topics), Query: query})
}

// CreateTopicHandler creates a topic
func (h *APIHandlers) CreateTopicHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	topic, err := h.topics.Create(r.Context(), req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

// AddNoteHandler appends a note to a topic from the dashboard
func (h *APIHandlers) AddNoteHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.editors.AddNote(r.Context(), chi.URLParam(r, "id"), req.Content); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EditorHandler returns the projection of a topic's editor, opening it
func (h *APIHandlers) EditorHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.editors.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// IntentHandler applies a structural intent ({"type": "split", ...})
func (h *APIHandlers) IntentHandler(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, errors.Wrap(err, errors.ErrTypeValidation, "INVALID_JSON", "invalid request body"))
		return
	}
	in, err := editor.DecodeIntent(data)
	if err != nil {
		writeError(w, errors.Wrap(err, errors.ErrTypeValidation, "INVALID_INTENT", "invalid intent").
			WithUserMessage("The edit could not be applied"))
		return
	}

	view, err := h.editors.Dispatch(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// InputHandler applies a DOM input event
func (h *APIHandlers) InputHandler(w http.ResponseWriter, r *http.Request) {
	var ev editor.InputEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	view, err := h.editors.Input(r.Context(), chi.URLParam(r, "id"), ev)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// CompositionHandler handles IME composition start and end events
func (h *APIHandlers) CompositionHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phase string `json:"phase"`
		editor.InputEvent
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	topicID := chi.URLParam(r, "id")
	var (
		view types.EditorView
		err  error
	)
	switch req.Phase {
	case "start":
		view, err = h.editors.CompositionStart(r.Context(), topicID, req.BlockID)
	case "end":
		view, err = h.editors.CompositionEnd(r.Context(), topicID, req.InputEvent)
	default:
		err = errors.New(errors.ErrTypeValidation, "INVALID_PHASE", fmt.Sprintf("unknown composition phase %q", req.Phase))
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// CloseEditorHandler flushes pending saves and closes the editor
func (h *APIHandlers) CloseEditorHandler(w http.ResponseWriter, r *http.Request) {
	flushed := h.editors.Close(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]bool{"flushed": flushed})
}

// EnhanceHandler requests an AI suggestion (?mode=improve)
func (h *APIHandlers) EnhanceHandler(w http.ResponseWriter, r *http.Request) {
	mode := models.EnhanceMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = models.ModeImprove
	}
	session, err := h.editors.Enhance(r.Context(), chi.URLParam(r, "id"), mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// AcceptHandler commits the pending suggestion
func (h *APIHandlers) AcceptHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.editors.Accept(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// RejectHandler discards the pending suggestion
func (h *APIHandlers) RejectHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.editors.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ResubmitHandler sends the topic's outstanding draft
func (h *APIHandlers) ResubmitHandler(w http.ResponseWriter, r *http.Request) {
	sent, err := h.editors.Resubmit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"sent": sent})
}

// ExportHandler downloads the topic as PDF
func (h *APIHandlers) ExportHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.editors.Export(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("X-Export-Pages", strconv.Itoa(result.Pages))
	if result.Location != "" {
		w.Header().Set("X-Export-Location", result.Location)
	}
	w.Write(result.Data)
}

// NotificationsHandler drains pending user-visible messages
func (h *APIHandlers) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.notifier.Drain())
}

// ModesHandler lists the enhancement modes
func (h *APIHandlers) ModesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.EnhanceModes)
}
