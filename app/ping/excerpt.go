package ping

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability"
	"github.com/PuerkitoBio/goquery"
)

// DefaultExcerptLength is the excerpt size in runes used for outgoing pings.
const DefaultExcerptLength = 255

type Excerpt struct {
	Title string
	Text  string
}

// ExcerptFromHTML extracts the readable text of an HTML page and trims it to
// maxRunes, cutting at a word boundary.
func ExcerptFromHTML(data []byte, pageURL *url.URL, maxRunes int) (Excerpt, error) {
	if len(data) == 0 {
		return Excerpt{}, fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return Excerpt{}, fmt.Errorf("failed to extract content: %w", err)
	}
	if article.Content == "" {
		return Excerpt{}, fmt.Errorf("no content extracted from HTML data")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return Excerpt{}, fmt.Errorf("failed to parse extracted content: %w", err)
	}

	text := strings.Join(strings.Fields(doc.Text()), " ")
	slog.Debug("Excerpt extracted", "title", article.Title, "content_length", len(text))

	return Excerpt{
		Title: strings.TrimSpace(article.Title),
		Text:  truncate(text, maxRunes),
	}, nil
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return s
	}

	cut := string(runes[:maxRunes])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "..."
}
