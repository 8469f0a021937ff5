package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	cartdom "agrifarm/internal/domain/cart"
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// CartUsecase is the cart ledger plus its persistence bridge.
//
// The local store is authoritative between requests (the localStorage
// analogue): every mutation reloads items from it, applies the change, and
// writes the item list back with a timestamp. The remote repository is a
// best-effort per-buyer sync copy; pushing to it is fire-and-forget and
// never fails a mutation.
type CartUsecase struct {
	local  cartdom.LocalStore
	remote cartdom.Repository // may be nil (anonymous / sync disabled)
	clock  Clock
}

func NewCartUsecase(local cartdom.LocalStore, remote cartdom.Repository) *CartUsecase {
	return &CartUsecase{
		local:  local,
		remote: remote,
		clock:  systemClock{},
	}
}

// NewCartUsecaseWithClock is useful for tests.
func NewCartUsecaseWithClock(local cartdom.LocalStore, remote cartdom.Repository, clock Clock) *CartUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &CartUsecase{local: local, remote: remote, clock: clock}
}

// Load restores the buyer's cart for session start. A read or parse
// failure on the local tier degrades to an empty cart, never a failed
// session. Totals are always recomputed from the stored items.
func (uc *CartUsecase) Load(ctx context.Context, buyerID string) (*cartdom.Cart, error) {
	bid := strings.TrimSpace(buyerID)
	if bid == "" {
		return nil, ErrCartInvalidArgument
	}

	now := uc.clock.Now()

	var items []cartdom.Item
	if rec, err := uc.local.Load(bid); err != nil {
		log.Printf("[cart_uc] WARN: local cart load failed buyerId=%s err=%v (starting empty)", bid, err)
	} else if rec != nil {
		items = rec.Items
	}

	c, err := cartdom.New(bid, items, now)
	if err != nil {
		return nil, err
	}

	// one-way reconciliation toward the remote copy, fire-and-forget
	uc.syncRemote(c)

	return c, nil
}

// AddItem merges it into the buyer's cart and persists.
func (uc *CartUsecase) AddItem(ctx context.Context, buyerID string, it cartdom.Item) (*cartdom.Cart, error) {
	return uc.mutate(ctx, buyerID, func(c *cartdom.Cart, now time.Time) error {
		return c.AddItem(it, now)
	})
}

// SetQuantity sets the quantity for productID; quantities below 1 remove
// the line (the ledger owns that invariant).
func (uc *CartUsecase) SetQuantity(ctx context.Context, buyerID, productID string, qty int) (*cartdom.Cart, error) {
	return uc.mutate(ctx, buyerID, func(c *cartdom.Cart, now time.Time) error {
		return c.SetQuantity(productID, qty, now)
	})
}

// RemoveItem removes productID from the cart; absence is not an error.
func (uc *CartUsecase) RemoveItem(ctx context.Context, buyerID, productID string) (*cartdom.Cart, error) {
	return uc.mutate(ctx, buyerID, func(c *cartdom.Cart, now time.Time) error {
		return c.Remove(productID, now)
	})
}

// Clear empties the ledger and both storage tiers.
func (uc *CartUsecase) Clear(ctx context.Context, buyerID string) (*cartdom.Cart, error) {
	c, err := uc.mutate(ctx, buyerID, func(c *cartdom.Cart, now time.Time) error {
		return c.Clear(now)
	})
	if err != nil {
		return nil, err
	}
	if uc.remote != nil {
		if derr := uc.remote.DeleteByBuyerID(ctx, c.ID); derr != nil {
			log.Printf("[cart_uc] WARN: remote cart delete failed buyerId=%s err=%v", c.ID, derr)
		}
	}
	return c, nil
}

// mutate loads, applies fn, persists locally, then pushes remote
// fire-and-forget. The returned cart is always internally consistent.
func (uc *CartUsecase) mutate(ctx context.Context, buyerID string, fn func(*cartdom.Cart, time.Time) error) (*cartdom.Cart, error) {
	bid := strings.TrimSpace(buyerID)
	if bid == "" {
		return nil, ErrCartInvalidArgument
	}

	now := uc.clock.Now()

	var items []cartdom.Item
	if rec, err := uc.local.Load(bid); err != nil {
		log.Printf("[cart_uc] WARN: local cart load failed buyerId=%s err=%v (starting empty)", bid, err)
	} else if rec != nil {
		items = rec.Items
	}

	c, err := cartdom.New(bid, items, now)
	if err != nil {
		return nil, err
	}

	if err := fn(c, now); err != nil {
		return nil, err
	}

	// items only, never totals
	if err := uc.local.Save(bid, cartdom.LocalRecord{Items: c.Items, Timestamp: now}); err != nil {
		return nil, err
	}

	uc.syncRemote(c)
	return c, nil
}

// syncRemote pushes the cart to the remote copy. Deliberately weak
// consistency: fire-and-forget, no retry, failures only logged.
func (uc *CartUsecase) syncRemote(c *cartdom.Cart) {
	if uc.remote == nil || c == nil {
		return
	}
	cp := *c
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := uc.remote.Upsert(ctx, &cp); err != nil {
			log.Printf("[cart_uc] WARN: remote cart sync failed buyerId=%s err=%v", cp.ID, err)
		}
	}()
}
