// Package keyboard assembles reply and inline keyboards from plain
// values, keeping telebot's markup plumbing out of the handlers.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn is one inline button: visible text, callback unique, and
// the payload delivered back with the press.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// ReplyButtons builds a resized reply keyboard from rows of labels.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, labels := range rows {
		row := make([]tele.Btn, 0, len(labels))
		for _, label := range labels {
			row = append(row, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(row...))
	}
	markup.Reply(keyboard...)
	return markup
}

// RemoveKeyboard hides the reply keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// InlineButtons places each button on its own row.
func InlineButtons(buttons []InlineBtn) *tele.ReplyMarkup {
	rows := make([][]InlineBtn, len(buttons))
	for i, b := range buttons {
		rows[i] = []InlineBtn{b}
	}
	return InlineButtonsRows(rows...)
}

// InlineButtonsRows builds an inline keyboard laid out exactly as the
// given rows.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		r := make([]tele.InlineButton, len(row))
		for j, b := range row {
			r[j] = *markup.Data(b.Text, b.Unique, b.Data).Inline()
		}
		inline[i] = r
	}
	markup.InlineKeyboard = inline
	return markup
}

// NavRow appends a pagination row with whichever of prev/next are set
// (zero Unique means the arrow is omitted).
func NavRow(rows [][]InlineBtn, prev, next InlineBtn) [][]InlineBtn {
	var nav []InlineBtn
	if prev.Unique != "" {
		nav = append(nav, prev)
	}
	if next.Unique != "" {
		nav = append(nav, next)
	}
	if len(nav) == 0 {
		return rows
	}
	return append(rows, nav)
}

// SingleCancelMarkup is one cancel button wired to the given callback
// unique. Options override the payload and the button text, in that
// order.
func SingleCancelMarkup(unique string, options ...string) *tele.ReplyMarkup {
	payload, text := "cancel", "❌ Cancel"
	if len(options) > 0 && options[0] != "" {
		payload = options[0]
	}
	if len(options) > 1 && options[1] != "" {
		text = options[1]
	}
	return InlineButtonsRows([]InlineBtn{{Text: text, Unique: unique, Data: payload}})
}
