// Package handlers binds the shop services to Telegram commands,
// callbacks and payment updates.
package handlers

import (
	"fmt"

	tg "github.com/zhukata/shopbot/core/telegram"
	"github.com/zhukata/shopbot/core/telegram/commands"
	"github.com/zhukata/shopbot/shop/service"

	tele "gopkg.in/telebot.v4"
)

// Callback keys. Payloads are numeric ids, two-part payloads use ':'.
const (
	cbCategory        = "cat"    // category id -> subcategory listing
	cbCategoryPage    = "catpg"  // page -> category listing
	cbSubcategory     = "sub"    // subcategory id -> product listing
	cbSubcategoryPage = "subpg"  // category id:page
	cbProduct         = "prod"   // product id -> product card
	cbProductPage     = "prodpg" // subcategory id:page
	cbAddToCart       = "add"    // product id
	cbCartRemove      = "cartrm" // cart item id
	cbCheckout        = "checkout"
	cbCheckoutCancel  = "ckcancel"
	cbPay             = "pay"       // order id
	cbPayCancel       = "paycancel" // order id
)

// Reply keyboard labels, also registered as command aliases so pressing a
// button runs the command.
const (
	btnCatalog = "🛍 Catalog"
	btnCart    = "🛒 Cart"
	btnFAQ     = "ℹ️ FAQ"
)

// FAQEntry is one question/answer pair served via /faq and inline queries.
type FAQEntry struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// Handlers owns every user-facing entry point of the shop bot.
type Handlers struct {
	clients  service.ClientStore
	catalog  *service.Catalog
	carts    *service.Carts
	checkout *service.Checkout
	payments *service.Payments

	paymentToken string
	exportPath   string
	faq          []FAQEntry
	botUsername  string
}

// SetBotUsername records the bot's own username once the bot is built;
// the FAQ handler uses it to render the inline-query hint.
func (h *Handlers) SetBotUsername(name string) { h.botUsername = name }

// Options collects the collaborators for New.
type Options struct {
	Clients  service.ClientStore
	Catalog  *service.Catalog
	Carts    *service.Carts
	Checkout *service.Checkout
	Payments *service.Payments

	PaymentToken string
	ExportPath   string
	FAQ          []FAQEntry
}

func New(opts Options) *Handlers {
	return &Handlers{
		clients:      opts.Clients,
		catalog:      opts.Catalog,
		carts:        opts.Carts,
		checkout:     opts.Checkout,
		payments:     opts.Payments,
		paymentToken: opts.PaymentToken,
		exportPath:   opts.ExportPath,
		faq:          opts.FAQ,
	}
}

// Register wires commands and callbacks into the registry. Payment and
// inline-query endpoints are exposed separately via Routes.
func (h *Handlers) Register(reg *tg.Registry) error {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "Open the shop",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     h.Help,
		Description: "How to use the bot",
	})
	reg.RegisterCommand("/catalog", commands.Command{
		Handler:     h.Catalog,
		Description: "Browse the catalog",
		Aliases:     []string{btnCatalog},
	})
	reg.RegisterCommand("/cart", commands.Command{
		Handler:     h.Cart,
		Description: "Show your cart",
		Aliases:     []string{btnCart},
	})
	reg.RegisterCommand("/faq", commands.Command{
		Handler:     h.FAQ,
		Description: "Frequently asked questions",
		Aliases:     []string{btnFAQ},
	})
	reg.RegisterCommand("/export", commands.Command{
		Handler:     h.Export,
		Description: "Download the orders spreadsheet",
		AdminOnly:   true,
		Hidden:      true,
	})

	if err := registerAll(reg, map[string]tele.HandlerFunc{
		cbCategory:        h.OpenCategory,
		cbCategoryPage:    h.CategoryPage,
		cbSubcategory:     h.OpenSubcategory,
		cbSubcategoryPage: h.SubcategoryPage,
		cbProduct:         h.ProductCard,
		cbProductPage:     h.ProductPage,
		cbAddToCart:       h.AddToCart,
		cbCartRemove:      h.RemoveFromCart,
		cbCheckout:        h.StartCheckout,
		cbCheckoutCancel:  h.CancelCheckout,
		cbPay:             h.Pay,
		cbPayCancel:       h.CancelPayment,
	}); err != nil {
		return fmt.Errorf("handlers register: %w", err)
	}
	return nil
}

func registerAll(reg *tg.Registry, cbs map[string]tele.HandlerFunc) error {
	for key, fn := range cbs {
		if err := reg.RegisterCallback(key, fn); err != nil {
			return err
		}
	}
	return nil
}
