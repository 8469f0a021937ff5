package usecase

import (
	"context"
	"sync"
	"time"

	cartdom "agrifarm/internal/domain/cart"
	orderdom "agrifarm/internal/domain/order"
	paymentdom "agrifarm/internal/domain/payment"
	profiledom "agrifarm/internal/domain/profile"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// ----------------------------
// cart.LocalStore
// ----------------------------

type memLocalStore struct {
	mu      sync.Mutex
	recs    map[string]cartdom.LocalRecord
	loadErr error
	saveErr error
}

func newMemLocalStore() *memLocalStore {
	return &memLocalStore{recs: map[string]cartdom.LocalRecord{}}
}

func (s *memLocalStore) Load(buyerID string) (*cartdom.LocalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	rec, ok := s.recs[buyerID]
	if !ok {
		return nil, nil
	}
	cp := rec
	return &cp, nil
}

func (s *memLocalStore) Save(buyerID string, rec cartdom.LocalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.recs[buyerID] = rec
	return nil
}

// ----------------------------
// cart.Repository (remote copy)
// ----------------------------

type memCartRepo struct {
	mu      sync.Mutex
	carts   map[string]cartdom.Cart
	upserts int
	deletes int
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: map[string]cartdom.Cart{}}
}

func (r *memCartRepo) GetByBuyerID(_ context.Context, buyerID string) (*cartdom.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[buyerID]
	if !ok {
		return nil, nil
	}
	cp := c
	return &cp, nil
}

func (r *memCartRepo) Upsert(_ context.Context, c *cartdom.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.carts[c.ID] = *c
	return nil
}

func (r *memCartRepo) DeleteByBuyerID(_ context.Context, buyerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	delete(r.carts, buyerID)
	return nil
}

// ----------------------------
// order.Repository
// ----------------------------

type memOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]orderdom.Order
	items     map[string][]orderdom.Item
	createErr error
	saveErr   error
	creates   int
	saves     int
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders: map[string]orderdom.Order{},
		items:  map[string][]orderdom.Item{},
	}
}

func (r *memOrderRepo) CreateWithItems(_ context.Context, o orderdom.Order, items []orderdom.Item) (orderdom.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return orderdom.Order{}, r.createErr
	}
	if _, exists := r.orders[o.ID]; exists {
		return orderdom.Order{}, orderdom.ErrConflict
	}
	r.creates++
	r.orders[o.ID] = o
	r.items[o.ID] = append([]orderdom.Item(nil), items...)
	return o, nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (orderdom.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	return o, nil
}

func (r *memOrderRepo) GetItems(_ context.Context, orderID string) ([]orderdom.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]orderdom.Item(nil), r.items[orderID]...), nil
}

func (r *memOrderRepo) GetByTransactionID(_ context.Context, transactionID string) (orderdom.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.GatewayTransactionID == transactionID {
			return o, nil
		}
	}
	return orderdom.Order{}, orderdom.ErrNotFound
}

func (r *memOrderRepo) Save(_ context.Context, o orderdom.Order) (orderdom.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return orderdom.Order{}, r.saveErr
	}
	if _, ok := r.orders[o.ID]; !ok {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	r.saves++
	r.orders[o.ID] = o
	return o, nil
}

// ----------------------------
// payment.Gateway
// ----------------------------

type fakeGateway struct {
	mu sync.Mutex

	createErr   error
	pushErr     error
	hostedErr   error
	retrieveTx  paymentdom.Transaction
	retrieveErr error

	createdTxID string
	creates     int
	pushes      int
	hosted      int
	retrieves   int
}

func (g *fakeGateway) CreateTransaction(_ context.Context, amount int64, description, customerPhone string) (paymentdom.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return paymentdom.Transaction{}, g.createErr
	}
	g.creates++
	if g.createdTxID == "" {
		g.createdTxID = "txn-1"
	}
	return paymentdom.Transaction{
		ID:          g.createdTxID,
		Status:      "pending",
		Amount:      amount,
		Currency:    cartdom.Currency,
		Description: description,
	}, nil
}

func (g *fakeGateway) SendPush(_ context.Context, transactionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pushErr != nil {
		return g.pushErr
	}
	g.pushes++
	return nil
}

func (g *fakeGateway) HostedPaymentURL(_ context.Context, transactionID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.hostedErr != nil {
		return "", g.hostedErr
	}
	g.hosted++
	return "https://pay.example/" + transactionID, nil
}

func (g *fakeGateway) Retrieve(_ context.Context, transactionID string) (paymentdom.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.retrieveErr != nil {
		return paymentdom.Transaction{}, g.retrieveErr
	}
	g.retrieves++
	tx := g.retrieveTx
	if tx.ID == "" {
		tx.ID = transactionID
	}
	return tx, nil
}

// ----------------------------
// CompletionNotifier
// ----------------------------

type fakeNotifier struct {
	mu     sync.Mutex
	calls  int
	orders []orderdom.Order
}

func (n *fakeNotifier) OrderCompleted(_ context.Context, o orderdom.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	n.orders = append(n.orders, o)
	return nil
}

// ----------------------------
// profile.Repository
// ----------------------------

type staticProfiles struct {
	profiles map[string]profiledom.Profile
}

func (r *staticProfiles) GetByID(_ context.Context, id string) (profiledom.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return profiledom.Profile{}, profiledom.ErrNotFound
	}
	return p, nil
}
