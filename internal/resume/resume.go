// Package resume extracts plain text from resume files so it can be sent to the screening webhook.
package resume

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/filisonic/easyhr/internal/shared"
	"github.com/ledongthuc/pdf"
)

const (
	// MaxTextLength is the number of characters kept from an extracted resume.
	MaxTextLength = 12000
	// MinExtractedTextLength is the minimum text length for an extraction to count as successful.
	MinExtractedTextLength = 50
	// binarySampleSize is the number of bytes sampled for binary detection.
	binarySampleSize = 1000
	// binaryThreshold is the proportion of control characters that marks content as binary.
	binaryThreshold = 0.3
)

// ErrNoText is returned when a file parses but yields too little text, as with scanned PDFs.
var ErrNoText = errors.New("no extractable text")

// SupportedExtensions lists the file types ExtractText accepts.
var SupportedExtensions = []string{".pdf", ".txt", ".md"}

// ExtractText returns normalized, truncated text from a PDF, TXT or Markdown resume.
func ExtractText(path string) (string, error) {
	var (
		text string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		text, err = extractPDF(path)
	case ".txt", ".md":
		text, err = extractPlain(path)
	default:
		return "", fmt.Errorf("%w: unsupported resume file type %q", shared.ErrInvalidInput, ext)
	}
	if err != nil {
		return "", err
	}

	text = Normalize(text)
	if utf8.RuneCountInString(text) < MinExtractedTextLength {
		return "", fmt.Errorf("%w in %s", ErrNoText, filepath.Base(path))
	}
	return Truncate(text, MaxTextLength), nil
}

func extractPDF(path string) (text string, err error) {
	// the pdf reader panics on some malformed content streams
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to parse PDF %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	data, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return string(data), nil
}

func extractPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read resume: %w", err)
	}
	content := string(data)
	if IsBinaryData(content) {
		return "", fmt.Errorf("%w: %s looks like a binary file", shared.ErrInvalidInput, filepath.Base(path))
	}
	return content, nil
}

// Normalize collapses runs of blank lines and trims trailing spaces from every line.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var b strings.Builder
	blank := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

// Truncate keeps at most n runes of text.
func Truncate(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n])
}

// IsBinaryData checks if content appears to be binary (PDF/ZIP markers or mostly control bytes).
func IsBinaryData(content string) bool {
	if len(content) == 0 {
		return false
	}
	if strings.HasPrefix(content, "%PDF-") || strings.HasPrefix(content, "PK") {
		return true
	}

	sampleSize := min(binarySampleSize, len(content))
	nonPrintable := 0
	for i := 0; i < sampleSize; i++ {
		ch := content[i]
		if ch < 32 && ch != '\n' && ch != '\r' && ch != '\t' {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(sampleSize) > binaryThreshold
}
