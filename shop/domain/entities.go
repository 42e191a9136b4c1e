package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is a Telegram user known to the shop. Registered lazily on first
// contact; TelegramID is the stable identity, the row id is internal.
type Client struct {
	ID         int64     `db:"id"`
	TelegramID int64     `db:"telegram_id"`
	Username   string    `db:"username"`
	CreatedAt  time.Time `db:"created_at"`
}

// Category is a top-level catalog node.
type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Subcategory belongs to exactly one category.
type Subcategory struct {
	ID         int64  `db:"id"`
	CategoryID int64  `db:"category_id"`
	Name       string `db:"name"`
}

// Product is a sellable item within a subcategory.
type Product struct {
	ID            int64           `db:"id"`
	SubcategoryID int64           `db:"subcategory_id"`
	Name          string          `db:"name"`
	Description   string          `db:"description"`
	Price         decimal.Decimal `db:"price"`
}

// Cart is the single per-client cart.
type Cart struct {
	ID       int64 `db:"id"`
	ClientID int64 `db:"client_id"`
}

// CartItem is one product row inside a cart. (CartID, ProductID) is unique;
// repeated adds accumulate into Quantity.
type CartItem struct {
	ID        int64 `db:"id"`
	CartID    int64 `db:"cart_id"`
	ProductID int64 `db:"product_id"`
	Quantity  int   `db:"quantity"`
}

// CartLine is a cart item joined with its product, as shown to the user.
type CartLine struct {
	ItemID    int64           `db:"item_id"`
	ProductID int64           `db:"product_id"`
	Name      string          `db:"name"`
	Price     decimal.Decimal `db:"price"`
	Quantity  int             `db:"quantity"`
}

// Subtotal returns price multiplied by quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order statuses. An order starts pending and moves to paid exactly once;
// cancelled is terminal.
const (
	OrderStatusPending   = "pending_payment"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Order is a checkout result awaiting or past payment.
type Order struct {
	ID        int64           `db:"id"`
	ClientID  int64           `db:"client_id"`
	FullName  string          `db:"full_name"`
	Phone     string          `db:"phone"`
	Address   string          `db:"address"`
	Total     decimal.Decimal `db:"total"`
	Status    string          `db:"status"`
	CreatedAt time.Time       `db:"created_at"`
}

// OrderItem is a priced snapshot of a cart line at order creation time.
type OrderItem struct {
	ID        int64           `db:"id"`
	OrderID   int64           `db:"order_id"`
	ProductID int64           `db:"product_id"`
	Name      string          `db:"name"`
	Price     decimal.Decimal `db:"price"`
	Quantity  int             `db:"quantity"`
}

// TotalOf sums price times quantity over the given cart lines.
func TotalOf(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// MinorUnits converts a decimal amount to provider minor units
// (cents for two-exponent currencies), rounding half up.
func MinorUnits(amount decimal.Decimal) int {
	return int(amount.Shift(2).Round(0).IntPart())
}
