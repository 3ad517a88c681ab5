package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"notemaster/pkg/errors"
	"notemaster/pkg/models"
)

// AIClient calls the remote enhancement service
type AIClient struct {
	baseURL    string
	httpClient *http.Client
	sessions   SessionProvider
}

// NewAIClient creates an enhancement client. httpClient may be nil.
func NewAIClient(baseURL string, httpClient *http.Client, sessions SessionProvider) *AIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &AIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		sessions:   sessions,
	}
}

// Enhance asks the service to rewrite a topic's notes in the given mode
func (c *AIClient) Enhance(ctx context.Context, topicID string, mode models.EnhanceMode) (*models.EnhanceResult, error) {
	endpoint := c.baseURL + "/improve/enhance/" + url.PathEscape(topicID) + "?mode=" + url.QueryEscape(string(mode))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeApp, "BAD_REQUEST", "build enhance request")
	}
	if err := authorize(req, c.sessions); err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.ErrNetwork.WithCause(err).
			WithUserMessage(errors.ErrEnhanceFailed.GetUserMessage()).
			WithContext("topicId", topicID)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ErrNetwork.WithCause(err).
			WithUserMessage(errors.ErrEnhanceFailed.GetUserMessage()).
			WithContext("topicId", topicID)
	}

	var result models.EnhanceResult
	decodeErr := json.Unmarshal(data, &result)

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errors.ErrSessionExpired.WithStatus(resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := result.Message
		if decodeErr != nil || msg == "" {
			msg = "AI improvement failed."
		}
		return nil, errors.ErrEnhanceFailed.WithStatus(resp.StatusCode).
			WithUserMessage(msg).
			WithContext("topicId", topicID).
			WithContext("mode", string(mode))
	}
	if decodeErr != nil {
		return nil, errors.ErrEnhanceFailed.WithCause(decodeErr).
			WithContext("topicId", topicID)
	}
	return &result, nil
}
