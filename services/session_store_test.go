package services

import (
	"testing"
	"time"

	"voice-agent-platform/models"
)

func strPtr(s string) *string { return &s }

func TestSessionStoreGetUnknownRoom(t *testing.T) {
	store := NewSessionStore()
	if _, ok := store.Get("nope"); ok {
		t.Fatal("expected no state for an unknown room")
	}
}

func TestSessionStoreFirstUpsertDefaults(t *testing.T) {
	store := NewSessionStore()

	state := store.Upsert("room-1", models.SessionUpdate{})
	if state.RoomName != "room-1" {
		t.Fatalf("expected room name room-1, got %q", state.RoomName)
	}
	if state.Sources == nil || len(state.Sources) != 0 {
		t.Fatalf("expected empty non-nil sources, got %#v", state.Sources)
	}
	if state.LastAnswer != "" {
		t.Fatalf("expected empty last answer, got %q", state.LastAnswer)
	}
	if state.UpdatedAt.IsZero() {
		t.Fatal("expected updatedAt to be set")
	}
}

func TestSessionStoreOmittedFieldsCarryForward(t *testing.T) {
	store := NewSessionStore()

	sources := []models.SessionSource{{DocID: "d1", DocTitle: "doc.txt", ChunkID: "d1:0", Snippet: "hello"}}
	store.Upsert("room-1", models.SessionUpdate{Sources: sources, LastAnswer: strPtr("first answer")})

	// Updating only the answer keeps the previous sources.
	state := store.Upsert("room-1", models.SessionUpdate{LastAnswer: strPtr("second answer")})
	if len(state.Sources) != 1 || state.Sources[0].DocID != "d1" {
		t.Fatalf("expected sources to carry forward, got %#v", state.Sources)
	}
	if state.LastAnswer != "second answer" {
		t.Fatalf("expected updated answer, got %q", state.LastAnswer)
	}

	// Updating only the sources keeps the previous answer.
	state = store.Upsert("room-1", models.SessionUpdate{Sources: []models.SessionSource{}})
	if len(state.Sources) != 0 {
		t.Fatalf("expected sources replaced with empty list, got %#v", state.Sources)
	}
	if state.LastAnswer != "second answer" {
		t.Fatalf("expected answer to carry forward, got %q", state.LastAnswer)
	}
}

func TestSessionStoreUpdatedAtAdvances(t *testing.T) {
	store := NewSessionStore()

	first := store.Upsert("room-1", models.SessionUpdate{})
	time.Sleep(2 * time.Millisecond)
	second := store.Upsert("room-1", models.SessionUpdate{})

	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("expected updatedAt to advance: %v then %v", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestSessionStoreRoomsAreIndependent(t *testing.T) {
	store := NewSessionStore()

	store.Upsert("room-a", models.SessionUpdate{LastAnswer: strPtr("answer a")})
	store.Upsert("room-b", models.SessionUpdate{LastAnswer: strPtr("answer b")})

	stateA, _ := store.Get("room-a")
	stateB, _ := store.Get("room-b")
	if stateA.LastAnswer != "answer a" || stateB.LastAnswer != "answer b" {
		t.Fatalf("room states leaked: %q / %q", stateA.LastAnswer, stateB.LastAnswer)
	}
}
