package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPDF parses the PDF structure and concatenates the text layer of
// every page. A document whose structure cannot be parsed is an error;
// individual pages that fail to decode are skipped.
func ExtractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(text)
	}

	return normalizeText(b.String()), nil
}

// ExtractPlainText decodes the bytes as UTF-8 best-effort, strips null
// bytes, and normalizes line endings. It never fails.
func ExtractPlainText(data []byte) string {
	text := strings.ReplaceAll(string(data), "\x00", "")
	return normalizeText(text)
}

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text)
}
