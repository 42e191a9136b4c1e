package handlers

import (
	"log/slog"

	"github.com/zhukata/shopbot/core/logger"
	tghelpers "github.com/zhukata/shopbot/core/telegram/helpers"
	"github.com/zhukata/shopbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Start registers the user and shows the main menu.
func (h *Handlers) Start(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sender := c.Sender()

	client, err := h.clients.GetOrCreate(ctx, sender.ID, sender.Username)
	if err != nil {
		return err
	}
	logger.Info(ctx, "shop", "client.registered",
		slog.Int64("client_id", client.ID),
	)

	menu := keyboard.ReplyButtons(
		[]string{btnCatalog},
		[]string{btnCart, btnFAQ},
	)
	return tghelpers.SendMD(c,
		"Welcome to the shop! 👋\n\n"+
			"Browse the catalog, collect a cart and pay right here in Telegram.\n"+
			"Use the buttons below or /help for the command list.",
		menu,
	)
}

// Help lists the available commands.
func (h *Handlers) Help(c tele.Context) error {
	return tghelpers.SendMD(c,
		"*Commands*\n"+
			"/catalog — browse categories and products\n"+
			"/cart — show your cart and check out\n"+
			"/faq — frequently asked questions\n"+
			"/help — this message",
	)
}
