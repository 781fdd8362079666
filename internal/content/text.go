package content

import (
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// wordsPerMinute is the reading speed used for ReadingTime
const wordsPerMinute = 200

// PlainText strips markup from an HTML fragment and collapses whitespace
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	var parts []string
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	if len(parts) == 0 {
		parts = append(parts, doc.Text())
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// Excerpt returns up to maxChars of the document's text, cut at a word boundary
func Excerpt(doc Document, maxChars int) string {
	text := PlainText(RenderHTML(doc))
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	cut := string(runes[:maxChars])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// WordCount counts the words of the rendered document
func WordCount(doc Document) int {
	return len(strings.Fields(PlainText(RenderHTML(doc))))
}

// ReadingTime estimates minutes to read, at least 1
func ReadingTime(doc Document) int {
	minutes := int(math.Ceil(float64(WordCount(doc)) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}
