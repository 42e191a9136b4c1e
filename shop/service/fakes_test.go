package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/zhukata/shopbot/shop/domain"
)

// fakeStore is an in-memory stand-in for the sqlx repositories, honoring
// the same contracts: one cart per client, unique (cart, product) lines
// with accumulating quantity, guarded paid transition.
type fakeStore struct {
	clients    map[int64]domain.Client
	nextClient int64

	products map[int64]domain.Product

	carts    map[int64]int64 // client id -> cart id
	nextCart int64

	items    map[int64]map[int64]*domain.CartItem // cart id -> product id -> line
	nextItem int64

	orders     map[int64]*domain.Order
	orderItems map[int64][]domain.OrderItem
	nextOrder  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients:    map[int64]domain.Client{},
		products:   map[int64]domain.Product{},
		carts:      map[int64]int64{},
		items:      map[int64]map[int64]*domain.CartItem{},
		orders:     map[int64]*domain.Order{},
		orderItems: map[int64][]domain.OrderItem{},
	}
}

func (f *fakeStore) addProduct(id int64, name, price string) {
	f.products[id] = domain.Product{ID: id, Name: name, Price: decimal.RequireFromString(price)}
}

func (f *fakeStore) GetOrCreate(ctx context.Context, telegramID int64, username string) (domain.Client, error) {
	if c, ok := f.clients[telegramID]; ok {
		c.Username = username
		f.clients[telegramID] = c
		return c, nil
	}
	f.nextClient++
	c := domain.Client{ID: f.nextClient, TelegramID: telegramID, Username: username}
	f.clients[telegramID] = c
	return c, nil
}

func (f *fakeStore) ByTelegramID(ctx context.Context, telegramID int64) (domain.Client, error) {
	c, ok := f.clients[telegramID]
	if !ok {
		return domain.Client{}, domain.ErrClientNotFound
	}
	return c, nil
}

func (f *fakeStore) ProductByID(ctx context.Context, id int64) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeStore) cartGetOrCreate(clientID int64) int64 {
	if id, ok := f.carts[clientID]; ok {
		return id
	}
	f.nextCart++
	f.carts[clientID] = f.nextCart
	f.items[f.nextCart] = map[int64]*domain.CartItem{}
	return f.nextCart
}

func (f *fakeStore) CartGetOrCreate(ctx context.Context, clientID int64) (domain.Cart, error) {
	id := f.cartGetOrCreate(clientID)
	return domain.Cart{ID: id, ClientID: clientID}, nil
}

func (f *fakeStore) AddItem(ctx context.Context, cartID, productID int64, quantity int) (domain.CartItem, error) {
	lines := f.items[cartID]
	if line, ok := lines[productID]; ok {
		line.Quantity += quantity
		return *line, nil
	}
	f.nextItem++
	line := &domain.CartItem{ID: f.nextItem, CartID: cartID, ProductID: productID, Quantity: quantity}
	lines[productID] = line
	return *line, nil
}

func (f *fakeStore) RemoveItem(ctx context.Context, cartID, itemID int64) error {
	for pid, line := range f.items[cartID] {
		if line.ID == itemID {
			delete(f.items[cartID], pid)
		}
	}
	return nil
}

func (f *fakeStore) Lines(ctx context.Context, cartID int64) ([]domain.CartLine, error) {
	var out []domain.CartLine
	for pid, line := range f.items[cartID] {
		p := f.products[pid]
		out = append(out, domain.CartLine{
			ItemID:    line.ID,
			ProductID: pid,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  line.Quantity,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func (f *fakeStore) Clear(ctx context.Context, cartID int64) error {
	f.items[cartID] = map[int64]*domain.CartItem{}
	return nil
}

func (f *fakeStore) Create(ctx context.Context, order domain.Order, items []domain.OrderItem) (domain.Order, error) {
	f.nextOrder++
	order.ID = f.nextOrder
	f.orders[order.ID] = &order
	f.orderItems[order.ID] = items
	return order, nil
}

func (f *fakeStore) ByID(ctx context.Context, id int64) (domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return *o, nil
}

func (f *fakeStore) Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	return f.orderItems[orderID], nil
}

func (f *fakeStore) MarkPaid(ctx context.Context, id int64) (domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	switch o.Status {
	case domain.OrderStatusPending:
		o.Status = domain.OrderStatusPaid
		return *o, nil
	case domain.OrderStatusPaid:
		return *o, domain.ErrOrderAlreadyPaid
	default:
		return domain.Order{}, domain.ErrOrderNotPending
	}
}

func (f *fakeStore) Cancel(ctx context.Context, id int64) error {
	o, ok := f.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != domain.OrderStatusPending {
		return domain.ErrOrderNotPending
	}
	o.Status = domain.OrderStatusCancelled
	return nil
}

// cartStoreAdapter renames CartGetOrCreate to match the CartStore
// interface without colliding with the client GetOrCreate method.
type cartStoreAdapter struct{ *fakeStore }

func (a cartStoreAdapter) GetOrCreate(ctx context.Context, clientID int64) (domain.Cart, error) {
	return a.CartGetOrCreate(ctx, clientID)
}

func newCartService(f *fakeStore) *Carts {
	return NewCarts(f, cartStoreAdapter{f}, f)
}
