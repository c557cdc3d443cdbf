package models

import "time"

// PromptConfig is the voice agent's editable system prompt.
type PromptConfig struct {
	SystemPrompt string    `json:"systemPrompt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PromptConfigRequest is the /agent/config update body.
type PromptConfigRequest struct {
	SystemPrompt string `json:"systemPrompt"`
}

// TokenRequest asks for a room join token for one participant.
type TokenRequest struct {
	RoomName string `json:"roomName"`
	Identity string `json:"identity"`
}
