package services

import (
	"context"
	"errors"
	"testing"

	"MusicStoreAPI/internal/model"
	"MusicStoreAPI/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// failingSlots accepts nothing; used to check persistence errors stay internal.
type failingSlots struct{}

func (failingSlots) Load(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }
func (failingSlots) Save(context.Context, string, []byte) error   { return errors.New("quota exceeded") }
func (failingSlots) Delete(context.Context, string) error         { return errors.New("disk gone") }

func guitar() model.Product {
	return model.Product{
		ID:            "gtr-1",
		Name:          "Stratocaster",
		Brand:         "Fender",
		Price:         100,
		OriginalPrice: ptr(120.0),
		Images:        []string{"/img/strat-front.jpg", "/img/strat-back.jpg"},
		MaxStock:      ptr(5),
	}
}

func newStore(t *testing.T, slots repository.SlotStore) *CartStore {
	t.Helper()
	return NewCartStore(context.Background(), slots, repository.SlotKey("s1", repository.SlotCart), zap.NewNop())
}

func TestCartStore_AddCopiesProductWithDefaults(t *testing.T) {
	st := newStore(t, repository.NewMemorySlotRepository())

	st.Add(context.Background(), model.Product{ID: "p", Name: "Capo", Price: 12.5, Image: "/img/capo.jpg"}, 1)

	items := st.Items()
	require.Len(t, items, 1)
	it := items[0]
	assert.Equal(t, model.ProductID("p"), it.ProductID)
	assert.Equal(t, "/img/capo.jpg", it.Image)
	assert.Equal(t, DefaultMaxStock, it.MaxStock)
	assert.True(t, it.InStock)
	assert.Equal(t, DefaultDelivery, it.Delivery)
	assert.Nil(t, it.OriginalPrice)
	assert.Equal(t, 1, it.Quantity)
}

func TestCartStore_AddPrefersFirstImage(t *testing.T) {
	st := newStore(t, repository.NewMemorySlotRepository())
	p := guitar()
	p.Image = "/img/fallback.jpg"

	st.Add(context.Background(), p, 1)
	assert.Equal(t, "/img/strat-front.jpg", st.Items()[0].Image)
}

func TestCartStore_AddMergesSameProduct(t *testing.T) {
	tests := []struct {
		name   string
		q1, q2 int
		want   int
	}{
		{"within stock", 2, 2, 4},
		{"capped at stock", 3, 4, 5},
		{"first request clamped", 9, 1, 5},
		{"non positive clamps up", 0, -3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newStore(t, repository.NewMemorySlotRepository())
			st.Add(context.Background(), guitar(), tt.q1)
			st.Add(context.Background(), guitar(), tt.q2)

			items := st.Items()
			require.Len(t, items, 1)
			assert.Equal(t, tt.want, items[0].Quantity)
		})
	}
}

func TestCartStore_AddZeroMeansOne(t *testing.T) {
	st := newStore(t, repository.NewMemorySlotRepository())
	ctx := context.Background()
	st.Add(ctx, guitar(), 2)
	st.Add(ctx, guitar(), 0)

	assert.Equal(t, 3, st.Items()[0].Quantity)
}

func TestCartStore_AddKeepsInsertionOrder(t *testing.T) {
	st := newStore(t, repository.NewMemorySlotRepository())
	ctx := context.Background()
	st.Add(ctx, model.Product{ID: "b", Name: "B", Price: 1}, 1)
	st.Add(ctx, model.Product{ID: "a", Name: "A", Price: 1}, 1)
	st.Add(ctx, model.Product{ID: "b", Name: "B", Price: 1}, 1)

	items := st.Items()
	require.Len(t, items, 2)
	assert.Equal(t, model.ProductID("b"), items[0].ProductID)
	assert.Equal(t, model.ProductID("a"), items[1].ProductID)
}

func TestCartStore_UpdateQuantityClamps(t *testing.T) {
	st := newStore(t, repository.NewMemorySlotRepository())
	ctx := context.Background()
	st.Add(ctx, guitar(), 1)

	for _, q := range []int{3, 0, -7, 5, 6, 1000, 2} {
		st.UpdateQuantity(ctx, "gtr-1", q)
		got := st.Items()[0].Quantity
		assert.GreaterOrEqual(t, got, 1)
		assert.LessOrEqual(t, got, 5)
	}
	assert.Equal(t, 2, st.Items()[0].Quantity)

	st.UpdateQuantity(ctx, "gtr-1", 99)
	assert.True(t, st.AtMaxStock("gtr-1"))
	assert.False(t, st.AtMaxStock("missing"))

	// unknown product is ignored
	st.UpdateQuantity(ctx, "missing", 3)
	assert.Len(t, st.Items(), 1)
}

func TestCartStore_RemoveAndClear(t *testing.T) {
	st := newStore(t, repository.NewMemorySlotRepository())
	ctx := context.Background()
	st.Add(ctx, guitar(), 1)
	st.Add(ctx, model.Product{ID: "amp", Name: "Amp", Price: 300}, 1)

	st.Remove(ctx, "missing")
	assert.Len(t, st.Items(), 2)

	st.Remove(ctx, "gtr-1")
	items := st.Items()
	require.Len(t, items, 1)
	assert.Equal(t, model.ProductID("amp"), items[0].ProductID)

	st.ApplyCoupon("MUSIC10")
	st.Clear(ctx)
	items, coupon := st.Snapshot()
	assert.Empty(t, items)
	assert.False(t, coupon.Applied)

	p := CalculatePrice(items, coupon.Applied)
	assert.Zero(t, p.Subtotal)
	assert.Equal(t, 29.0, p.Shipping)
	assert.Zero(t, p.Tax)
	assert.Equal(t, 29.0, p.Total)
}

func TestCartStore_ItemsAreCopies(t *testing.T) {
	st := newStore(t, repository.NewMemorySlotRepository())
	st.Add(context.Background(), guitar(), 1)

	items := st.Items()
	items[0].Quantity = 42
	*items[0].OriginalPrice = 1

	fresh := st.Items()[0]
	assert.Equal(t, 1, fresh.Quantity)
	assert.Equal(t, 120.0, *fresh.OriginalPrice)
}

func TestCartStore_PersistsAndRehydrates(t *testing.T) {
	slots := repository.NewMemorySlotRepository()
	ctx := context.Background()

	st := newStore(t, slots)
	st.Add(ctx, guitar(), 2)
	st.Add(ctx, model.Product{ID: "amp", Name: "Amp", Price: 300, InStock: ptr(false)}, 1)

	again := newStore(t, slots)
	assert.Equal(t, st.Items(), again.Items())
	assert.False(t, again.Items()[1].InStock)
}

func TestCartStore_RehydrateRepairsInvariants(t *testing.T) {
	slots := repository.NewMemorySlotRepository()
	ctx := context.Background()
	key := repository.SlotKey("s1", repository.SlotCart)
	require.NoError(t, repository.SaveJSON(ctx, slots, key, []model.CartItem{
		{ProductID: "x", Name: "X", Price: 1, Quantity: 4, MaxStock: 5},
		{ProductID: "x", Name: "X", Price: 1, Quantity: 4, MaxStock: 5},
		{ProductID: "y", Name: "Y", Price: 1, Quantity: 0},
	}))

	items := newStore(t, slots).Items()
	require.Len(t, items, 2)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, DefaultMaxStock, items[1].MaxStock)
}

func TestCartStore_MalformedSlotStartsEmpty(t *testing.T) {
	slots := repository.NewMemorySlotRepository()
	key := repository.SlotKey("s1", repository.SlotCart)
	require.NoError(t, slots.Save(context.Background(), key, []byte("{not json")))

	core, logs := observer.New(zap.WarnLevel)
	st := NewCartStore(context.Background(), slots, key, zap.New(core))

	assert.Empty(t, st.Items())
	assert.Equal(t, 1, logs.FilterMessage("discarding unreadable cart").Len())
}

func TestCartStore_PersistenceFailureIsSwallowed(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	st := NewCartStore(context.Background(), failingSlots{}, "s1:cart", zap.New(core))
	assert.Empty(t, st.Items())

	st.Add(context.Background(), guitar(), 2)

	require.Len(t, st.Items(), 1)
	assert.Equal(t, 2, st.Items()[0].Quantity)
	assert.Equal(t, 1, logs.FilterMessage("cart not saved").Len())
}

func TestCartService_StoresArePerSession(t *testing.T) {
	svc := NewCartService(repository.NewMemorySlotRepository(), zap.NewNop())
	ctx := context.Background()

	svc.Store(ctx, "a").Add(ctx, guitar(), 1)
	assert.Same(t, svc.Store(ctx, "a"), svc.Store(ctx, "a"))
	assert.Empty(t, svc.Store(ctx, "b").Items())

	cart := svc.Get(ctx, "a")
	require.Len(t, cart.Items, 1)
	assert.InDelta(t, 100, cart.Pricing.Subtotal, 1e-9)
	assert.InDelta(t, 400, cart.FreeShippingRemaining, 1e-9)
	assert.Empty(t, cart.MaxStockReached)

	svc.Store(ctx, "a").UpdateQuantity(ctx, "gtr-1", 5)
	assert.Equal(t, []model.ProductID{"gtr-1"}, svc.Get(ctx, "a").MaxStockReached)
}

func TestCartService_CouponAffectsPricing(t *testing.T) {
	svc := NewCartService(repository.NewMemorySlotRepository(), zap.NewNop())
	ctx := context.Background()
	st := svc.Store(ctx, "a")
	st.Add(ctx, guitar(), 2)

	st.ApplyCoupon("nope")
	cart := svc.Get(ctx, "a")
	assert.Zero(t, cart.Pricing.Discount)
	assert.Equal(t, "Invalid promo code", cart.Coupon.Error)

	st.ApplyCoupon("MUSIC10")
	st.ApplyCoupon("MUSIC10")
	cart = svc.Get(ctx, "a")
	assert.InDelta(t, 20, cart.Pricing.Discount, 1e-9)
	assert.True(t, cart.Coupon.Applied)
}
