package services

import (
	stderrors "errors"
	"sync"
	"time"

	"notemaster/pkg/errors"
	"notemaster/pkg/utils"
)

// Notification is a user-visible message produced outside a request, such as
// a failed background save
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	TopicID   string    `json:"topicId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier queues notifications until the front end drains them
type Notifier struct {
	mu    sync.Mutex
	queue []Notification
	limit int
}

// NewNotifier creates a notifier keeping at most limit messages
func NewNotifier(limit int) *Notifier {
	if limit <= 0 {
		limit = 50
	}
	return &Notifier{limit: limit}
}

// Add queues a notification, dropping the oldest beyond the limit
func (n *Notifier) Add(kind, topicID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.queue = append(n.queue, Notification{
		ID:        utils.GenerateShortUUID(),
		Kind:      kind,
		Message:   message,
		TopicID:   topicID,
		CreatedAt: time.Now(),
	})
	if over := len(n.queue) - n.limit; over > 0 {
		n.queue = append([]Notification(nil), n.queue[over:]...)
	}
}

// Error queues the user message of err
func (n *Notifier) Error(topicID string, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		n.Add("error", topicID, appErr.GetUserMessage())
		return
	}
	n.Add("error", topicID, err.Error())
}

// Drain returns and clears the queued notifications
func (n *Notifier) Drain() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.queue
	n.queue = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}
