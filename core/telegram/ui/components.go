// Package ui builds inline-query result payloads.
package ui

import tele "gopkg.in/telebot.v4"

// NewArticleResult builds an article result with an optional description
// line shown under the title in the inline picker.
func NewArticleResult(id, title, text, description string) *tele.ArticleResult {
	r := &tele.ArticleResult{
		Title:       title,
		Text:        text,
		Description: description,
	}
	r.SetResultID(id)
	return r
}

// Snippet trims text to at most n runes for use as a result description.
func Snippet(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
