package details

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-shiori/go-readability"
)

// Extractor extracts the readable text of an article from an HTML page.
type Extractor struct{}

// Extract returns the sanitized text of the page.
func (e Extractor) Extract(rd io.Reader, pageURL *url.URL) (string, error) {
	doc, err := readability.FromReader(rd, pageURL)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	return e.sanitize(doc.TextContent), nil
}

var spaces = regexp.MustCompile(`\s+`)

func (e Extractor) sanitize(s string) string {
	// nbsp
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}
