package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zhukata/shopbot/core/telegram/callbacks"
	"github.com/zhukata/shopbot/core/telegram/format"
	tghelpers "github.com/zhukata/shopbot/core/telegram/helpers"
	"github.com/zhukata/shopbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Cart shows the cart contents with remove buttons and a checkout button.
func (h *Handlers) Cart(c tele.Context) error {
	return h.renderCart(c, false)
}

// RemoveFromCart deletes one line and re-renders the cart.
func (h *Handlers) RemoveFromCart(c tele.Context) error {
	itemID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	if err := h.carts.Remove(ctx, c.Sender().ID, itemID); err != nil {
		return err
	}
	return h.renderCart(c, true)
}

func (h *Handlers) renderCart(c tele.Context, edit bool) error {
	ctx := tghelpers.BuildContext(c)
	view, err := h.carts.View(ctx, c.Sender().ID)
	if err != nil {
		return err
	}

	if view.Empty() {
		text := "Your cart is empty. Browse the /catalog to add something."
		if edit {
			return tghelpers.EditOrSendMD(c, text)
		}
		return tghelpers.SendMD(c, text)
	}

	var b strings.Builder
	b.WriteString("*Your cart*\n\n")
	for _, line := range view.Lines {
		fmt.Fprintf(&b, "%s × %d = %s\n",
			format.EscapeMarkdown(line.Name), line.Quantity, line.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: *%s*", view.Total.StringFixed(2))

	var rows [][]keyboard.InlineBtn
	for _, line := range view.Lines {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   fmt.Sprintf("🗑 %s", line.Name),
			Unique: cbCartRemove,
			Data:   strconv.FormatInt(line.ItemID, 10),
		}})
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: "✅ Checkout", Unique: cbCheckout, Data: "go"}})

	markup := keyboard.InlineButtonsRows(rows...)
	if edit {
		return tghelpers.EditOrSendMD(c, b.String(), markup)
	}
	return tghelpers.SendMD(c, b.String(), markup)
}
