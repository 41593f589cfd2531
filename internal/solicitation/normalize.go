// Package solicitation prepares raw solicitation content — pasted text,
// pasted HTML, fetched pages, or PDFs — into clean plain text for the
// analysis pipeline.
package solicitation

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// maxTextLen caps the text handed to the model; long RFP attachments blow
// past context limits otherwise.
const maxTextLen = 48_000

// PrepareText normalizes pasted solicitation content. HTML is sanitized and
// reduced to text; whitespace is collapsed; the result is length-capped and
// valid UTF-8.
func PrepareText(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}

	if looksLikeHTML(text) {
		text = HTMLToText(text)
	}

	text = strings.ToValidUTF8(text, "")
	text = collapseWhitespace(text)
	return Truncate(text, maxTextLen)
}

// looksLikeHTML is a cheap structural check; SAM.gov descriptions and agency
// portal pages arrive as markup when users paste them wholesale.
func looksLikeHTML(s string) bool {
	head := strings.ToLower(s)
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(head, "<html") ||
		strings.Contains(head, "<body") ||
		strings.Contains(head, "<div") ||
		strings.Contains(head, "<p>") ||
		strings.Contains(head, "<table")
}

// HTMLToText strips unsafe markup and converts the remainder to plain text.
func HTMLToText(html string) string {
	sanitized := bluemonday.UGCPolicy().Sanitize(html)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sanitized))
	if err != nil {
		return sanitized // fall back to whatever survived sanitization
	}

	// Keep block boundaries as newlines so "shall" statements don't run
	// together into one undifferentiated line.
	var b strings.Builder
	doc.Find("p, li, tr, h1, h2, h3, h4, h5, h6, br").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})
	b.WriteString(doc.Text())
	return b.String()
}

// collapseWhitespace trims each line and drops runs of blank lines, keeping
// line structure intact for list-style requirements.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 {
			out = append(out, "")
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// Truncate cuts a string to max bytes without splitting a rune.
func Truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := text[:max]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
