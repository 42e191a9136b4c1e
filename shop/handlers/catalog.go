package handlers

import (
	"fmt"
	"strconv"

	"github.com/zhukata/shopbot/core/telegram/callbacks"
	"github.com/zhukata/shopbot/core/telegram/format"
	tghelpers "github.com/zhukata/shopbot/core/telegram/helpers"
	"github.com/zhukata/shopbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

const pageSep = ":"

// Catalog opens the category listing.
func (h *Handlers) Catalog(c tele.Context) error {
	return h.renderCategories(c, 1, false)
}

// CategoryPage flips the category listing to another page.
func (h *Handlers) CategoryPage(c tele.Context) error {
	page, err := callbacks.PayloadInt(c)
	if err != nil {
		return err
	}
	return h.renderCategories(c, page, true)
}

func (h *Handlers) renderCategories(c tele.Context, pageNum int, edit bool) error {
	ctx := tghelpers.BuildContext(c)
	page, err := h.catalog.Categories(ctx, pageNum)
	if err != nil {
		return err
	}
	if len(page.Items) == 0 {
		return tghelpers.SendMD(c, "The catalog is empty for now, check back later.")
	}

	var rows [][]keyboard.InlineBtn
	for _, cat := range page.Items {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   cat.Name,
			Unique: cbCategory,
			Data:   strconv.FormatInt(cat.ID, 10),
		}})
	}
	var prev, next keyboard.InlineBtn
	if page.HasPrev() {
		prev = keyboard.InlineBtn{Text: "⬅️", Unique: cbCategoryPage, Data: strconv.Itoa(page.Num - 1)}
	}
	if page.HasNext() {
		next = keyboard.InlineBtn{Text: "➡️", Unique: cbCategoryPage, Data: strconv.Itoa(page.Num + 1)}
	}
	markup := keyboard.InlineButtonsRows(keyboard.NavRow(rows, prev, next)...)

	text := fmt.Sprintf("*Categories* (page %d/%d)\nPick a category:", page.Num, page.Pages)
	if edit {
		return tghelpers.EditOrSendMD(c, text, markup)
	}
	return tghelpers.SendMD(c, text, markup)
}

// OpenCategory shows the subcategories of the chosen category.
func (h *Handlers) OpenCategory(c tele.Context) error {
	categoryID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return err
	}
	return h.renderSubcategories(c, categoryID, 1)
}

// SubcategoryPage flips the subcategory listing to another page.
func (h *Handlers) SubcategoryPage(c tele.Context) error {
	categoryID, page, err := callbacks.PayloadTwoInt64(c, pageSep)
	if err != nil {
		return err
	}
	return h.renderSubcategories(c, categoryID, int(page))
}

func (h *Handlers) renderSubcategories(c tele.Context, categoryID int64, pageNum int) error {
	ctx := tghelpers.BuildContext(c)
	page, err := h.catalog.Subcategories(ctx, categoryID, pageNum)
	if err != nil {
		return err
	}
	if len(page.Items) == 0 {
		return tghelpers.EditOrSendMD(c, "Nothing here yet.")
	}

	var rows [][]keyboard.InlineBtn
	for _, sub := range page.Items {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   sub.Name,
			Unique: cbSubcategory,
			Data:   callbacks.JoinInt64(sub.ID, 1, pageSep),
		}})
	}
	var prev, next keyboard.InlineBtn
	if page.HasPrev() {
		prev = keyboard.InlineBtn{Text: "⬅️", Unique: cbSubcategoryPage, Data: callbacks.JoinInt64(categoryID, int64(page.Num-1), pageSep)}
	}
	if page.HasNext() {
		next = keyboard.InlineBtn{Text: "➡️", Unique: cbSubcategoryPage, Data: callbacks.JoinInt64(categoryID, int64(page.Num+1), pageSep)}
	}
	rows = keyboard.NavRow(rows, prev, next)
	rows = append(rows, []keyboard.InlineBtn{{Text: "⬆️ Categories", Unique: cbCategoryPage, Data: "1"}})

	text := fmt.Sprintf("*Subcategories* (page %d/%d)\nPick a subcategory:", page.Num, page.Pages)
	return tghelpers.EditOrSendMD(c, text, keyboard.InlineButtonsRows(rows...))
}

// OpenSubcategory shows the product listing of the chosen subcategory.
func (h *Handlers) OpenSubcategory(c tele.Context) error {
	subcategoryID, page, err := callbacks.PayloadTwoInt64(c, pageSep)
	if err != nil {
		return err
	}
	return h.renderProducts(c, subcategoryID, int(page))
}

// ProductPage flips the product listing to another page.
func (h *Handlers) ProductPage(c tele.Context) error {
	subcategoryID, page, err := callbacks.PayloadTwoInt64(c, pageSep)
	if err != nil {
		return err
	}
	return h.renderProducts(c, subcategoryID, int(page))
}

func (h *Handlers) renderProducts(c tele.Context, subcategoryID int64, pageNum int) error {
	ctx := tghelpers.BuildContext(c)
	page, err := h.catalog.Products(ctx, subcategoryID, pageNum)
	if err != nil {
		return err
	}
	if len(page.Items) == 0 {
		return tghelpers.EditOrSendMD(c, "No products here yet.")
	}

	var rows [][]keyboard.InlineBtn
	for _, p := range page.Items {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   fmt.Sprintf("%s — %s", p.Name, p.Price.StringFixed(2)),
			Unique: cbProduct,
			Data:   strconv.FormatInt(p.ID, 10),
		}})
	}
	var prev, next keyboard.InlineBtn
	if page.HasPrev() {
		prev = keyboard.InlineBtn{Text: "⬅️", Unique: cbProductPage, Data: callbacks.JoinInt64(subcategoryID, int64(page.Num-1), pageSep)}
	}
	if page.HasNext() {
		next = keyboard.InlineBtn{Text: "➡️", Unique: cbProductPage, Data: callbacks.JoinInt64(subcategoryID, int64(page.Num+1), pageSep)}
	}
	rows = keyboard.NavRow(rows, prev, next)
	rows = append(rows, []keyboard.InlineBtn{{Text: "⬆️ Categories", Unique: cbCategoryPage, Data: "1"}})

	text := fmt.Sprintf("*Products* (page %d/%d)\nPick a product:", page.Num, page.Pages)
	return tghelpers.EditOrSendMD(c, text, keyboard.InlineButtonsRows(rows...))
}

// ProductCard shows one product with an add-to-cart button.
func (h *Handlers) ProductCard(c tele.Context) error {
	productID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	p, err := h.catalog.Product(ctx, productID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("*%s*\n%s\n\nPrice: *%s*",
		format.EscapeMarkdown(p.Name),
		format.EscapeMarkdown(p.Description),
		p.Price.StringFixed(2),
	)
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "➕ Add to cart", Unique: cbAddToCart, Data: strconv.FormatInt(p.ID, 10)}},
		[]keyboard.InlineBtn{{Text: "⬅️ Back", Unique: cbSubcategory, Data: callbacks.JoinInt64(p.SubcategoryID, 1, pageSep)}},
	)
	return tghelpers.EditOrSendMD(c, text, markup)
}

// AddToCart puts one unit of the product into the user's cart.
func (h *Handlers) AddToCart(c tele.Context) error {
	productID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	item, err := h.carts.Add(ctx, c.Sender().ID, productID, 1)
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf("Added to cart ✅ (%d in cart)", item.Quantity))
}
