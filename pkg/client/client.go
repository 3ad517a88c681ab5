// Package client talks to the remote notes store and the AI enhancement service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"notemaster/pkg/errors"
	"notemaster/pkg/models"
)

// SessionProvider hands out the current session credential
type SessionProvider interface {
	Current() *models.Session
}

// SessionFunc adapts a function to SessionProvider. It lets the session
// manager and the client it calls be constructed in either order.
type SessionFunc func() *models.Session

// Current implements SessionProvider
func (f SessionFunc) Current() *models.Session { return f() }

// Client is the REST client for topics, notes and accounts
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   SessionProvider
}

// New creates a REST client. httpClient may be nil.
func New(baseURL string, httpClient *http.Client, sessions SessionProvider) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		sessions:   sessions,
	}
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out, false); err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) && (appErr.Status == http.StatusUnauthorized || appErr.Status == http.StatusBadRequest) {
			return "", errors.ErrInvalidCredentials.WithStatus(appErr.Status).WithCause(err)
		}
		return "", err
	}
	if out.Token == "" {
		return "", errors.ErrInvalidCredentials.WithUserMessage("The server did not return a session token")
	}
	return out.Token, nil
}

// Register creates an account
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/auth/register", body, nil, false)
}

// Me returns the account behind the session
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListTopics returns the user's topics
func (c *Client) ListTopics(ctx context.Context) ([]models.TopicSummary, error) {
	var topics []models.TopicSummary
	if err := c.do(ctx, http.MethodGet, "/topics", nil, &topics, true); err != nil {
		return nil, err
	}
	if topics == nil {
		topics = []models.TopicSummary{}
	}
	return topics, nil
}

// CreateTopic creates a topic with the given title
func (c *Client) CreateTopic(ctx context.Context, title string) (*models.TopicSummary, error) {
	var topic models.TopicSummary
	if err := c.do(ctx, http.MethodPost, "/topics", map[string]string{"title": title}, &topic, true); err != nil {
		return nil, err
	}
	if topic.Title == "" {
		topic.Title = title
	}
	return &topic, nil
}

// GetTopic fetches a topic with its notes
func (c *Client) GetTopic(ctx context.Context, id string) (*models.Topic, error) {
	var topic models.Topic
	if err := c.do(ctx, http.MethodGet, "/topics/"+url.PathEscape(id), nil, &topic, true); err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) && appErr.Status == http.StatusNotFound {
			return nil, errors.ErrTopicNotFound.WithStatus(http.StatusNotFound).WithContext("topicId", id)
		}
		return nil, err
	}
	if topic.ID == "" {
		topic.ID = id
	}
	return &topic, nil
}

// AddNote appends a note to a topic
func (c *Client) AddNote(ctx context.Context, topicID, content string) error {
	return c.do(ctx, http.MethodPost, "/topics/"+url.PathEscape(topicID)+"/notes",
		map[string]string{"content": content}, nil, true)
}

// UpdateNotes replaces the notes of a topic
func (c *Client) UpdateNotes(ctx context.Context, topicID string, blocks []models.Block) error {
	if blocks == nil {
		blocks = []models.Block{}
	}
	body := struct {
		Notes []models.Block `json:"notes"`
	}{Notes: blocks}
	return c.do(ctx, http.MethodPut, "/topics/"+url.PathEscape(topicID)+"/updateNotes", body, nil, true)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}, auth bool) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		if err := authorize(req, c.sessions); err != nil {
			return err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.ErrNetwork.WithCause(err).WithContext("path", path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.ErrNetwork.WithCause(err).WithContext("path", path)
	}

	if err := statusError(resp.StatusCode, data); err != nil {
		return err.WithContext("path", path)
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return errors.Wrap(err, errors.ErrTypeAPI, "BAD_RESPONSE", "unexpected response body").
				WithUserMessage("The server sent an unexpected response").
				WithContext("path", path)
		}
	}
	return nil
}

func authorize(req *http.Request, sessions SessionProvider) error {
	if sessions == nil {
		return errors.ErrNotAuthenticated
	}
	s := sessions.Current()
	if s == nil || s.Token == "" {
		return errors.ErrNotAuthenticated
	}
	if !s.Valid(time.Now()) {
		return errors.ErrSessionExpired
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)
	return nil
}

// statusError maps a non-success status to an AppError carrying the remote message
func statusError(status int, body []byte) *errors.AppError {
	if status >= 200 && status < 300 {
		return nil
	}
	msg := remoteMessage(body)
	if status == http.StatusUnauthorized {
		err := errors.ErrSessionExpired.WithStatus(status)
		if msg != "" {
			err = err.WithContext("remoteMessage", msg)
		}
		return err
	}
	err := errors.ErrRemote.WithStatus(status).WithContext("status", status)
	if msg != "" {
		err = err.WithUserMessage(msg)
	}
	return err
}

func remoteMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
