package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"MusicStoreAPI/internal/model"
	"MusicStoreAPI/internal/repository"

	"go.uber.org/zap"
)

const (
	DefaultMaxStock = 99
	DefaultDelivery = "Livraison gratuite"
)

// CartService owns one CartStore per shopping session.
type CartService struct {
	Slots  repository.SlotStore
	Logger *zap.Logger
	Now    func() time.Time

	mu     sync.Mutex
	stores map[string]*CartStore
}

func NewCartService(slots repository.SlotStore, logger *zap.Logger) *CartService {
	return &CartService{
		Slots:  slots,
		Logger: logger,
		Now:    time.Now,
		stores: make(map[string]*CartStore),
	}
}

// Store returns the session's cart, rehydrating it from its slot on first use.
func (s *CartService) Store(ctx context.Context, sessionID string) *CartStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[sessionID]
	if !ok {
		st = NewCartStore(ctx, s.Slots, repository.SlotKey(sessionID, repository.SlotCart), s.Logger)
		s.stores[sessionID] = st
	}
	st.touched = s.Now()
	return st
}

// Sweep forgets carts not used since cutoff. Their items stay in the slot
// store and are rehydrated on the next visit; the coupon is not kept.
func (s *CartService) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for sid, st := range s.stores {
		if st.touched.Before(cutoff) {
			delete(s.stores, sid)
			n++
		}
	}
	return n
}

// Get returns the cart with its pricing.
func (s *CartService) Get(ctx context.Context, sessionID string) *model.CartResponse {
	st := s.Store(ctx, sessionID)
	items, coupon := st.Snapshot()

	pricing := CalculatePrice(items, coupon.Applied)
	maxed := []model.ProductID{}
	for _, it := range items {
		if it.Quantity >= it.MaxStock {
			maxed = append(maxed, it.ProductID)
		}
	}
	return &model.CartResponse{
		Items:                 items,
		Pricing:               pricing,
		Coupon:                coupon,
		FreeShippingRemaining: FreeShippingRemaining(pricing.Subtotal),
		MaxStockReached:       maxed,
	}
}

// CartStore is the cart of one session. Every mutation rewrites the whole
// item list to the slot; write failures are logged and the in-memory list
// stays authoritative.
type CartStore struct {
	slots  repository.SlotStore
	key    string
	logger *zap.Logger

	// guarded by CartService.mu
	touched time.Time

	mu     sync.Mutex
	items  []model.CartItem
	coupon model.CouponState
}

func NewCartStore(ctx context.Context, slots repository.SlotStore, key string, logger *zap.Logger) *CartStore {
	st := &CartStore{slots: slots, key: key, logger: logger, items: []model.CartItem{}}

	var items []model.CartItem
	err := repository.LoadJSON(ctx, slots, key, &items)
	switch {
	case err == nil:
		st.items = normalizeItems(items)
	case errors.Is(err, repository.ErrSlotNotFound):
	default:
		logger.Warn("discarding unreadable cart", zap.String("slot", key), zap.Error(err))
	}
	return st
}

// Add puts quantity units of product in the cart, one when quantity is 0.
// An existing line is increased instead of duplicated; quantities are
// clamped to [1, maxStock].
func (s *CartStore) Add(ctx context.Context, p model.Product, quantity int) {
	if quantity == 0 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == p.ID {
			s.items[i].Quantity = clampQuantity(s.items[i].Quantity+quantity, s.items[i].MaxStock)
			s.persist(ctx)
			return
		}
	}

	s.items = append(s.items, newCartItem(p, quantity))
	s.persist(ctx)
}

// UpdateQuantity sets the quantity of a line, clamped to [1, maxStock].
func (s *CartStore) UpdateQuantity(ctx context.Context, id model.ProductID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == id {
			s.items[i].Quantity = clampQuantity(quantity, s.items[i].MaxStock)
			s.persist(ctx)
			return
		}
	}
}

func (s *CartStore) Remove(ctx context.Context, id model.ProductID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// Clear empties the cart and forgets the coupon.
func (s *CartStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []model.CartItem{}
	s.coupon = model.CouponState{}
	s.persist(ctx)
}

// ApplyCoupon tries code against the cart's coupon state and returns the result.
func (s *CartStore) ApplyCoupon(code string) model.CouponState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.coupon = ApplyCoupon(s.coupon, code)
	return s.coupon
}

// Items returns a deep copy of the lines in insertion order.
func (s *CartStore) Items() []model.CartItem {
	items, _ := s.Snapshot()
	return items
}

func (s *CartStore) Snapshot() ([]model.CartItem, model.CouponState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.CartItem, len(s.items))
	for i, it := range s.items {
		out[i] = it.Clone()
	}
	return out, s.coupon
}

// AtMaxStock reports whether the line already holds all available stock.
func (s *CartStore) AtMaxStock(id model.ProductID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range s.items {
		if it.ProductID == id {
			return it.Quantity >= it.MaxStock
		}
	}
	return false
}

// persist must be called with s.mu held.
func (s *CartStore) persist(ctx context.Context) {
	if err := repository.SaveJSON(ctx, s.slots, s.key, s.items); err != nil {
		s.logger.Warn("cart not saved", zap.String("slot", s.key), zap.Error(err))
	}
}

func newCartItem(p model.Product, quantity int) model.CartItem {
	maxStock := DefaultMaxStock
	if p.MaxStock != nil && *p.MaxStock > 0 {
		maxStock = *p.MaxStock
	}
	inStock := true
	if p.InStock != nil {
		inStock = *p.InStock
	}
	delivery := DefaultDelivery
	if p.Delivery != nil {
		delivery = *p.Delivery
	}
	image := p.Image
	if len(p.Images) > 0 && p.Images[0] != "" {
		image = p.Images[0]
	}

	item := model.CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		Image:     image,
		Price:     p.Price,
		Quantity:  clampQuantity(quantity, maxStock),
		MaxStock:  maxStock,
		InStock:   inStock,
		Delivery:  delivery,
	}
	if p.OriginalPrice != nil {
		op := *p.OriginalPrice
		item.OriginalPrice = &op
	}
	return item
}

func clampQuantity(q, maxStock int) int {
	if maxStock < 1 {
		maxStock = DefaultMaxStock
	}
	if q > maxStock {
		q = maxStock
	}
	if q < 1 {
		q = 1
	}
	return q
}

// normalizeItems repairs rehydrated lines so the cart invariants hold:
// one line per product and quantities within [1, maxStock].
func normalizeItems(items []model.CartItem) []model.CartItem {
	out := make([]model.CartItem, 0, len(items))
	seen := make(map[model.ProductID]int, len(items))
	for _, it := range items {
		if it.MaxStock < 1 {
			it.MaxStock = DefaultMaxStock
		}
		if idx, ok := seen[it.ProductID]; ok {
			out[idx].Quantity = clampQuantity(out[idx].Quantity+it.Quantity, out[idx].MaxStock)
			continue
		}
		it.Quantity = clampQuantity(it.Quantity, it.MaxStock)
		seen[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}
