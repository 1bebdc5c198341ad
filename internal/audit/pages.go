package audit

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// PageSeparator separates pages in extracted transcript text.
const PageSeparator = "\f"

// Page is the extracted text of one transcript page.
type Page struct {
	Source string
	// Number is the 1-based position of the page within Source.
	Number int
	Text   string
}

// String returns "source:page".
func (p Page) String() string {
	return fmt.Sprintf("%s:%d", p.Source, p.Number)
}

// SplitPages splits text on form feeds. Blank pages are dropped but keep
// their position in the numbering.
func SplitPages(source, text string) []Page {
	var pages []Page
	for i, chunk := range strings.Split(text, PageSeparator) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		pages = append(pages, Page{Source: source, Number: i + 1, Text: chunk})
	}
	return pages
}

// ReadPages reads all pages from r.
func ReadPages(r io.Reader, source string) ([]Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return SplitPages(source, string(data)), nil
}

// ReadPageFile reads all pages of the file at path.
func ReadPageFile(path string) ([]Page, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer file.Close()

	return ReadPages(file, path)
}
