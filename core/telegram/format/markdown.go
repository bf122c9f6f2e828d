// Package format prepares user supplied text for Telegram parse modes.
package format

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

const (
	// MarkdownV1 denotes Telegram markdown version 1.
	MarkdownV1 = 1
	// MarkdownV2 denotes Telegram markdown version 2.
	MarkdownV2 = 2
)

const mdV2Specials = "_*[]()~`>#+-=|{}.!\\"

var (
	mdV1Re = regexp.MustCompile("([_*`\\[])")
	mdV2Re = regexp.MustCompile("([" + strings.ReplaceAll(regexp.QuoteMeta(mdV2Specials), "-", `\-`) + "])")
	boldRe = regexp.MustCompile(`\*\*(.+?)\*\*`)
)

// EscapeMarkdown escapes special characters for MarkdownV1 or V2.
func EscapeMarkdown(text string, version int) (string, error) {
	switch version {
	case MarkdownV1:
		return mdV1Re.ReplaceAllString(text, `\$1`), nil
	case MarkdownV2:
		return mdV2Re.ReplaceAllString(text, `\$1`), nil
	}
	return "", fmt.Errorf("unsupported markdown version: %d", version)
}

// EmphasisHTML escapes text for HTML parse mode and turns **bold** spans into <b> tags.
func EmphasisHTML(text string) string {
	return boldRe.ReplaceAllString(html.EscapeString(text), "<b>$1</b>")
}

// Code wraps text in an HTML code span.
func Code(text string) string {
	return "<code>" + html.EscapeString(text) + "</code>"
}

// Truncate cuts s to at most max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}
