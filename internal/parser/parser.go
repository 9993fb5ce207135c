// Package parser derives a title, a preview and simple counts from plain-text file content.
package parser

import (
	"strings"
	"unicode/utf8"
)

const (
	maxTitleRunes   = 80
	maxPreviewRunes = 200
)

// Result holds the output of parsing a text file.
type Result struct {
	Title   string
	Body    string
	Preview string
	Lines   int
	Words   int
}

// Parse summarises raw text. Content is treated as opaque: invalid UTF-8 is
// replaced rather than rejected.
func Parse(data []byte) *Result {
	body := string(data)
	if !utf8.ValidString(body) {
		body = strings.ToValidUTF8(body, "�")
	}
	body = strings.ReplaceAll(body, "\r\n", "\n")

	return &Result{
		Title:   deriveTitle(body),
		Body:    body,
		Preview: truncate(strings.TrimSpace(body), maxPreviewRunes),
		Lines:   countLines(body),
		Words:   len(strings.Fields(body)),
	}
}

// deriveTitle returns the first non-blank line, shortened to maxTitleRunes.
func deriveTitle(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			return truncate(trimmed, maxTitleRunes)
		}
	}
	return ""
}

func countLines(body string) int {
	if body == "" {
		return 0
	}
	n := strings.Count(body, "\n")
	if !strings.HasSuffix(body, "\n") {
		n++
	}
	return n
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "…"
}
