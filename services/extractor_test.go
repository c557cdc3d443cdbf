package services

import (
	"testing"
)

func TestExtractPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello world", "hello world"},
		{"crlf normalized", "line one\r\nline two\r\n", "line one\nline two"},
		{"null bytes stripped", "he\x00llo\x00", "hello"},
		{"surrounding whitespace trimmed", "  \n hello \t ", "hello"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPlainText([]byte(tt.input)); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractPDFRejectsGarbage(t *testing.T) {
	if _, err := ExtractPDF([]byte("this is not a pdf")); err == nil {
		t.Fatal("expected an error for non-PDF bytes")
	}
	if _, err := ExtractPDF(nil); err == nil {
		t.Fatal("expected an error for empty input")
	}
}
