package services

import (
	"strings"
	"sync"
	"time"

	"voice-agent-platform/models"
)

// DefaultSystemPrompt is used when no prompt has been configured.
const DefaultSystemPrompt = "You are a helpful voice AI assistant."

// NormalizeSystemPrompt trims surrounding whitespace and normalizes line
// endings so prompts compare and render consistently.
func NormalizeSystemPrompt(prompt string) string {
	prompt = strings.ReplaceAll(prompt, "\r\n", "\n")
	return strings.TrimSpace(prompt)
}

// AgentConfigStore holds the single active agent prompt configuration.
type AgentConfigStore struct {
	mu      sync.RWMutex
	current models.PromptConfig
}

func NewAgentConfigStore(initialPrompt string) *AgentConfigStore {
	prompt := NormalizeSystemPrompt(initialPrompt)
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	return &AgentConfigStore{
		current: models.PromptConfig{
			SystemPrompt: prompt,
			UpdatedAt:    time.Now().UTC(),
		},
	}
}

func (s *AgentConfigStore) Get() models.PromptConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set replaces the active prompt. The caller is expected to have validated
// that the normalized prompt is non-empty.
func (s *AgentConfigStore) Set(systemPrompt string) models.PromptConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = models.PromptConfig{
		SystemPrompt: systemPrompt,
		UpdatedAt:    time.Now().UTC(),
	}
	return s.current
}
