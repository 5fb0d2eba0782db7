package resume

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/filisonic/easyhr/internal/shared"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

const sampleResume = `Ada Lovelace
ada@example.com


Experience
  Analytical Engine programmer, 1842-1843
  Wrote the first published algorithm intended for a machine.
`

func TestExtractText(t *testing.T) {
	t.Run("Plain Text", func(t *testing.T) {
		path := writeFile(t, "ada.txt", sampleResume)

		text, err := ExtractText(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(text, "Ada Lovelace") {
			t.Errorf("unexpected text start: %q", text[:20])
		}
		if strings.Contains(text, "\n\n\n") {
			t.Error("expected blank line runs to be collapsed")
		}
	})

	t.Run("Markdown Uppercase Extension", func(t *testing.T) {
		path := writeFile(t, "ADA.MD", sampleResume)
		if _, err := ExtractText(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Unsupported Extension", func(t *testing.T) {
		path := writeFile(t, "ada.docx", sampleResume)
		_, err := ExtractText(path)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Too Short", func(t *testing.T) {
		path := writeFile(t, "short.txt", "Ada")
		_, err := ExtractText(path)
		if !errors.Is(err, ErrNoText) {
			t.Fatalf("expected ErrNoText, got %v", err)
		}
	})

	t.Run("Binary Disguised As Text", func(t *testing.T) {
		path := writeFile(t, "ada.txt", "%PDF-1.7\x00\x01\x02 binary payload")
		_, err := ExtractText(path)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		if _, err := ExtractText(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("Corrupt PDF", func(t *testing.T) {
		path := writeFile(t, "broken.pdf", "this is not a pdf document at all")
		if _, err := ExtractText(path); err == nil {
			t.Fatal("expected error for corrupt PDF")
		}
	})

	t.Run("Truncates Long Resumes", func(t *testing.T) {
		path := writeFile(t, "long.txt", strings.Repeat("Go developer. ", MaxTextLength))
		text, err := ExtractText(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n := utf8.RuneCountInString(text); n != MaxTextLength {
			t.Errorf("expected %d runes, got %d", MaxTextLength, n)
		}
	})
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "hé"},
		{"", 2, ""},
	}

	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestIsBinaryData(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"empty", "", false},
		{"plain", "Experienced engineer\nwith Go", false},
		{"pdf magic", "%PDF-1.4 ...", true},
		{"zip magic", "PK\x03\x04", true},
		{"control bytes", "\x00\x01\x02\x03\x04abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBinaryData(tt.content); got != tt.want {
				t.Errorf("IsBinaryData(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}
