// Package extract pulls plain text out of uploaded resume files.
package extract

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a document parses but yields no extractable text.
var ErrNoText = errors.New("no text extracted from PDF")

// Text extracts the concatenated page text of a PDF stream in document
// order. Pages that yield no text contribute nothing; the pages are
// joined with no separator.
func Text(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var sb strings.Builder
	totalPages := reader.NumPage()
	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip problematic pages instead of failing entirely.
			continue
		}
		sb.WriteString(text)
	}
	text := strings.ToValidUTF8(strings.ReplaceAll(sb.String(), "\x00", " "), "")
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}
