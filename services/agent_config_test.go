package services

import "testing"

func TestNormalizeSystemPrompt(t *testing.T) {
	if got := NormalizeSystemPrompt("  be helpful \r\n and kind  "); got != "be helpful \n and kind" {
		t.Fatalf("unexpected normalization: %q", got)
	}
	if got := NormalizeSystemPrompt("   \r\n  "); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestAgentConfigStoreDefaults(t *testing.T) {
	store := NewAgentConfigStore("")
	if got := store.Get().SystemPrompt; got != DefaultSystemPrompt {
		t.Fatalf("expected default prompt, got %q", got)
	}

	store = NewAgentConfigStore("  custom prompt  ")
	if got := store.Get().SystemPrompt; got != "custom prompt" {
		t.Fatalf("expected normalized initial prompt, got %q", got)
	}
}

func TestAgentConfigStoreSet(t *testing.T) {
	store := NewAgentConfigStore("")

	updated := store.Set("answer in pirate speak")
	if updated.SystemPrompt != "answer in pirate speak" {
		t.Fatalf("unexpected prompt %q", updated.SystemPrompt)
	}
	if updated.UpdatedAt.IsZero() {
		t.Fatal("expected updatedAt to be set")
	}
	if store.Get().SystemPrompt != "answer in pirate speak" {
		t.Fatal("expected Get to reflect the update")
	}
}
