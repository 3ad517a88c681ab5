package services

import (
	"context"
	"log"
	"strings"

	"notemaster/pkg/errors"
	"notemaster/pkg/models"
)

// TopicRemote is the part of the notes service the dashboard needs
type TopicRemote interface {
	ListTopics(ctx context.Context) ([]models.TopicSummary, error)
	CreateTopic(ctx context.Context, title string) (*models.TopicSummary, error)
	GetTopic(ctx context.Context, id string) (*models.Topic, error)
	AddNote(ctx context.Context, topicID, content string) error
}

// TopicService handles dashboard operations
type TopicService struct {
	remote    TopicRemote
	validator *errors.Validator
}

// NewTopicService creates a new topic service
func NewTopicService(remote TopicRemote) *TopicService {
	return &TopicService{
		remote:    remote,
		validator: errors.NewValidator(),
	}
}

// List returns the user's topics whose title contains query, ignoring case
func (s *TopicService) List(ctx context.Context, query string) ([]models.TopicSummary, error) {
	topics, err := s.remote.ListTopics(ctx)
	if err != nil {
		logError(err)
		return nil, err
	}
	return FilterTopics(topics, query), nil
}

// FilterTopics keeps topics whose title contains query, ignoring case
func FilterTopics(topics []models.TopicSummary, query string) []models.TopicSummary {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return topics
	}
	out := make([]models.TopicSummary, 0, len(topics))
	for _, t := range topics {
		if strings.Contains(strings.ToLower(t.Title), query) {
			out = append(out, t)
		}
	}
	return out
}

// Create creates a topic with validation
func (s *TopicService) Create(ctx context.Context, title string) (*models.TopicSummary, error) {
	if result := s.validator.ValidateTitle(title); !result.IsValid {
		err := result.GetFirstError()
		err.Log()
		return nil, err
	}

	topic, err := s.remote.CreateTopic(ctx, strings.TrimSpace(title))
	if err != nil {
		logError(err)
		return nil, err
	}
	log.Printf("Topic created: %s", topic.ID)
	return topic, nil
}

// Get loads a topic
func (s *TopicService) Get(ctx context.Context, id string) (*models.Topic, error) {
	if result := s.validator.ValidateTopicID(id); !result.IsValid {
		err := result.GetFirstError()
		err.Log()
		return nil, err
	}
	topic, err := s.remote.GetTopic(ctx, id)
	if err != nil {
		logError(err)
		return nil, err
	}
	return topic, nil
}

// AddNote appends a note to a topic
func (s *TopicService) AddNote(ctx context.Context, topicID, content string) error {
	if err := s.validateNote(topicID, content); err != nil {
		return err
	}

	if err := s.remote.AddNote(ctx, topicID, content); err != nil {
		logError(err)
		return err
	}
	log.Printf("Note added to topic %s", topicID)
	return nil
}

func (s *TopicService) validateNote(topicID, content string) error {
	if result := s.validator.ValidateTopicID(topicID); !result.IsValid {
		err := result.GetFirstError()
		err.Log()
		return err
	}
	if result := s.validator.ValidateNoteContent(content); !result.IsValid {
		err := result.GetFirstError()
		err.Log()
		return err
	}
	return nil
}
