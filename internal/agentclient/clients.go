// Package agentclient is a thin HTTP client the agent process uses to talk
// to the platform server. Knowledge-base lookups degrade gracefully: on any
// failure the agent continues without retrieval context rather than failing
// the turn.
package agentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"voice-agent-platform/internal/logger"
	"voice-agent-platform/models"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SearchKB queries the knowledge base. Any error returns nil so the caller
// proceeds without sources.
func (c *Client) SearchKB(ctx context.Context, query string, topK int) []models.SearchResult {
	body, err := json.Marshal(models.SearchRequest{Query: query, TopK: &topK})
	if err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/kb/search", bytes.NewReader(body))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("Knowledge base search failed", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("Knowledge base search returned non-OK status", "status", resp.StatusCode)
		return nil
	}

	var payload struct {
		Results []models.SearchResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		logger.Warn("Failed to decode search response", "error", err)
		return nil
	}
	return payload.Results
}

// FetchSystemPrompt returns the configured agent prompt, or "" on failure.
func (c *Client) FetchSystemPrompt(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/agent/config", nil)
	if err != nil {
		return ""
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("Failed to fetch agent config", "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var payload struct {
		Config models.PromptConfig `json:"config"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ""
	}
	return payload.Config.SystemPrompt
}

// PublishSessionState pushes the sources and answer for the latest turn so
// frontends can render citations.
func (c *Client) PublishSessionState(ctx context.Context, roomName string, sources []models.SessionSource, lastAnswer string) error {
	update := models.SessionUpdate{Sources: sources, LastAnswer: &lastAnswer}
	if update.Sources == nil {
		update.Sources = []models.SessionSource{}
	}

	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal session update: %w", err)
	}

	endpoint := fmt.Sprintf("%s/session/%s/state", c.baseURL, url.PathEscape(roomName))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to publish session state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("session state update returned status %d", resp.StatusCode)
	}
	return nil
}
