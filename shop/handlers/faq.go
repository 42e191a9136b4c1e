package handlers

import (
	"strconv"
	"strings"

	tghelpers "github.com/zhukata/shopbot/core/telegram/helpers"
	"github.com/zhukata/shopbot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// FAQ invites the user to pick a question through an inline query.
func (h *Handlers) FAQ(c tele.Context) error {
	if len(h.faq) == 0 {
		return tghelpers.SendMD(c, "No FAQ entries yet.")
	}
	username := h.botUsername
	if username == "" {
		return tghelpers.SendMD(c, "Use the inline search in any chat to browse the FAQ.")
	}
	text := "Type `@" + username + " <question>` in any chat to search the FAQ, or just `@" + username + " ` to see all questions."
	return tghelpers.SendMD(c, text)
}

// OnInlineQuery answers FAQ searches with article results. An empty query
// lists every entry.
func (h *Handlers) OnInlineQuery(c tele.Context) error {
	query := c.Query()
	if query == nil {
		return nil
	}
	needle := strings.ToLower(strings.TrimSpace(query.Text))

	var results tele.Results
	for i, entry := range h.faq {
		if needle != "" && !strings.Contains(strings.ToLower(entry.Question), needle) {
			continue
		}
		results = append(results, ui.NewArticleResult(
			"faq-"+strconv.Itoa(i),
			entry.Question,
			entry.Answer,
			ui.Snippet(entry.Answer, 64),
		))
	}

	return c.Answer(&tele.QueryResponse{
		Results:   results,
		CacheTime: 60,
	})
}
