package resume

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrNoText = errors.New("no extractable text in document")

// Resumes longer than this are truncated before they reach a prompt.
const maxContextChars = 8000

// Extract pulls the plain text out of a PDF resume so it can be fed to
// the interviewer as candidate background. The pdf package panics on
// some malformed inputs, so parsing is wrapped in a recover.
func Extract(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("parsing pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parsing pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, plain); err != nil {
		return "", fmt.Errorf("reading text: %w", err)
	}

	text = normalize(b.String())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// normalize collapses whitespace runs and caps the length. PDF text
// extraction tends to produce ragged spacing that wastes prompt tokens.
func normalize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxContextChars {
		s = s[:maxContextChars]
	}
	return s
}
