package models

import "time"

// SessionSource is a lightweight reference to a chunk the agent used while
// answering a turn.
type SessionSource struct {
	DocID    string `json:"docId"`
	DocTitle string `json:"docTitle"`
	ChunkID  string `json:"chunkId"`
	Snippet  string `json:"snippet"`
}

// SessionState is the per-room record of the most recent retrieval context
// and answer. One entry per room name, kept for the process lifetime.
type SessionState struct {
	RoomName   string          `json:"roomName"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	Sources    []SessionSource `json:"sources"`
	LastAnswer string          `json:"lastAnswer,omitempty"`
}

// SessionUpdate carries the fields supplied in one upsert. Nil fields were
// omitted from the request and carry forward from the previous state.
type SessionUpdate struct {
	Sources    []SessionSource `json:"sources"`
	LastAnswer *string         `json:"lastAnswer"`
}
