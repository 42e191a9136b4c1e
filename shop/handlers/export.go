package handlers

import (
	"os"

	tghelpers "github.com/zhukata/shopbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Export sends the orders spreadsheet to the admin.
func (h *Handlers) Export(c tele.Context) error {
	if h.exportPath == "" {
		return tghelpers.SendMD(c, "Order export is not configured.")
	}
	if _, err := os.Stat(h.exportPath); err != nil {
		return tghelpers.SendMD(c, "No orders exported yet.")
	}
	doc := &tele.Document{
		File:     tele.FromDisk(h.exportPath),
		FileName: "orders.xlsx",
	}
	return c.Send(doc)
}
