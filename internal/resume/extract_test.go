package resume

import (
	"os"
	"strings"
	"testing"
)

func TestExtractFromPDF(t *testing.T) {
	data, err := os.ReadFile("testdata/sample.pdf")
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}

	text, err := Extract(data)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !strings.Contains(text, "Go Engineer") {
		t.Errorf("extracted text %q missing expected content", text)
	}
}

func TestExtractRejectsNonPDF(t *testing.T) {
	_, err := Extract([]byte("plain text, not a pdf"))
	if err == nil {
		t.Fatal("Extract succeeded on non-PDF input")
	}
}

func TestExtractRejectsEmptyInput(t *testing.T) {
	_, err := Extract(nil)
	if err == nil {
		t.Fatal("Extract succeeded on empty input")
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"collapses runs", "a  b\n\nc\td", "a b c d"},
		{"trims edges", "  hello  ", "hello"},
		{"empty", "   \n\t ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalize(tc.in); got != tc.want {
				t.Errorf("normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeTruncatesLongText(t *testing.T) {
	long := strings.Repeat("x ", maxContextChars)
	if got := normalize(long); len(got) > maxContextChars {
		t.Errorf("normalized length = %d, want <= %d", len(got), maxContextChars)
	}
}
