package cart

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/aquapeak/cart-service/internal/catalog"
	"github.com/aquapeak/cart-service/pkg/config"
	"github.com/aquapeak/cart-service/pkg/kv"
	"github.com/aquapeak/cart-service/pkg/logger"
	"github.com/aquapeak/cart-service/pkg/money"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestStore(t *testing.T, storage kv.Store) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), StoreParams{
		Storage:   storage,
		Logger:    testLogger(),
		ItemsKey:  "cartItems",
		RecentKey: "recentItems",
	})
	require.NoError(t, err)
	return store
}

func amountPtr(value float64) *money.Amount {
	amt := money.NewFromFloat(value)
	return &amt
}

func cartTestConfig() config.CartConfig {
	return config.CartConfig{ItemsKey: "cartItems", RecentKey: "recentItems", RecentLimit: 3}
}

func TestAddItemMergesByID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	listing := catalog.Listing{ID: "tilapia-50", Name: "Tilapia Fingerling", Price: amountPtr(100)}

	store.AddItem(ctx, listing, 2)
	store.AddItem(ctx, listing, 2)

	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, 4, items[0].Quantity)
}

func TestAddItemFreezesUnitPrice(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())

	store.AddItem(ctx, catalog.Listing{ID: "koi-1", Name: "Koi", Price: amountPtr(100)}, 1)
	store.AddItem(ctx, catalog.Listing{ID: "koi-1", Name: "Koi", Price: amountPtr(200)}, 1)

	items := store.Items()
	require.Len(t, items, 1)
	require.True(t, items[0].UnitPrice.Equal(money.NewFromInt(100)), "unit price must not be re-resolved")
	require.Equal(t, 2, items[0].Quantity)
}

func TestSetQuantityFloor(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	store.AddItem(ctx, catalog.Listing{ID: "koi-1", Price: amountPtr(10)}, 3)

	require.ErrorIs(t, store.SetQuantity(ctx, "koi-1", 0), ErrQuantityFloor)
	require.ErrorIs(t, store.SetQuantity(ctx, "koi-1", -5), ErrQuantityFloor)
	require.Equal(t, 3, store.Items()[0].Quantity)
}

func TestSetQuantityUpdatesBothLists(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	store.AddItem(ctx, catalog.Listing{ID: "koi-1", Price: amountPtr(10)}, 1)

	require.NoError(t, store.SetQuantity(ctx, "koi-1", 7))
	require.Equal(t, 7, store.Items()[0].Quantity)
	require.Equal(t, 7, store.RecentItems()[0].Quantity)

	require.ErrorIs(t, store.SetQuantity(ctx, "absent", 2), ErrLineNotFound)
}

func TestTotalsSubtotal(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	store.AddItem(ctx, catalog.Listing{ID: "a", Price: amountPtr(10)}, 2)
	store.AddItem(ctx, catalog.Listing{ID: "b", Price: amountPtr(5)}, 3)

	totals := store.Totals(ctx)
	require.True(t, totals.Subtotal.Equal(money.NewFromInt(35)), "expected 35, got %s", totals.Subtotal.String())
	require.Zero(t, totals.SkippedLines)
}

func TestPairPriceFallback(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())

	line := store.AddItem(ctx, catalog.Listing{ID: "guppy-pair", Species: "Guppy", PricePerCouple: amountPtr(250)}, 1)
	require.True(t, line.UnitPrice.Equal(money.NewFromInt(250)))
	require.Equal(t, catalog.PriceSourcePair, line.PriceSource)
	require.False(t, line.PriceUnresolved)
}

func TestUnresolvedPriceDefaultsToZeroAndFlags(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())

	line := store.AddItem(ctx, catalog.Listing{ID: "mystery", Category: "equipment"}, 2)
	require.True(t, line.UnitPrice.Equal(money.Zero()))
	require.True(t, line.PriceUnresolved)
	require.True(t, store.Totals(ctx).Subtotal.Equal(money.Zero()))
}

func TestClearEmptiesBothLists(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	store.AddItem(ctx, catalog.Listing{ID: "a", Price: amountPtr(10)}, 1)
	store.AddItem(ctx, catalog.Listing{ID: "b", Price: amountPtr(20)}, 1)

	store.Clear(ctx)

	require.Empty(t, store.Items())
	require.Empty(t, store.RecentItems())
	require.True(t, store.Totals(ctx).Subtotal.Equal(money.Zero()))
}

func TestRecentItemsBoundAndOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())

	ids := []string{"a", "b", "c", "d", "e"}
	for _, id := range ids {
		store.AddItem(ctx, catalog.Listing{ID: id, Price: amountPtr(1)}, 1)
	}

	recent := store.RecentItems()
	require.Len(t, recent, 3)
	require.Equal(t, "e", recent[0].ID)
	require.Equal(t, "d", recent[1].ID)
	require.Equal(t, "c", recent[2].ID)
}

func TestRecentItemsDeduplicateOnReAdd(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())

	store.AddItem(ctx, catalog.Listing{ID: "a", Price: amountPtr(1)}, 1)
	store.AddItem(ctx, catalog.Listing{ID: "b", Price: amountPtr(1)}, 1)
	store.AddItem(ctx, catalog.Listing{ID: "a", Price: amountPtr(1)}, 1)

	recent := store.RecentItems()
	require.Len(t, recent, 2)
	require.Equal(t, "a", recent[0].ID)
	require.Equal(t, 2, recent[0].Quantity)
}

func TestRemoveItemDropsFromBothLists(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	store.AddItem(ctx, catalog.Listing{ID: "a", Price: amountPtr(10)}, 1)
	store.AddItem(ctx, catalog.Listing{ID: "b", Price: amountPtr(20)}, 1)

	store.RemoveItem(ctx, "a")
	require.Len(t, store.Items(), 1)
	require.Equal(t, "b", store.Items()[0].ID)
	require.Len(t, store.RecentItems(), 1)

	// absent id is a no-op
	store.RemoveItem(ctx, "zzz")
	require.Len(t, store.Items(), 1)
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()

	store := newTestStore(t, storage)
	store.AddItem(ctx, catalog.Listing{ID: "a", Name: "Tilapia", Price: amountPtr(10)}, 2)
	store.AddItem(ctx, catalog.Listing{ID: "b", Species: "Guppy", PricePerCouple: amountPtr(250)}, 1)
	before := store.Items()

	reloaded := newTestStore(t, storage)
	after := reloaded.Items()

	require.Equal(t, before, after)
	require.Equal(t, store.RecentItems(), reloaded.RecentItems())
	require.True(t, reloaded.Totals(ctx).Subtotal.Equal(money.NewFromInt(270)))
}

func TestTotalsSkipLogKeepsRequestFields(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	require.NoError(t, storage.Set(ctx, "cartItems", `[{"id":"ghost","displayName":"Ghost","unitPrice":10,"quantity":0,"priceSource":"generic"}]`))

	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	store, err := NewStore(ctx, StoreParams{
		Storage:   storage,
		Logger:    logg,
		ItemsKey:  "cartItems",
		RecentKey: "recentItems",
	})
	require.NoError(t, err)

	totals := store.Totals(logg.WithSessionID(ctx, "sess-42"))
	require.Equal(t, 1, totals.SkippedLines)
	require.Contains(t, buf.String(), "cart.totals_line_skipped")
	require.Contains(t, buf.String(), `"session_id":"sess-42"`)
	require.Contains(t, buf.String(), `"product_id":"ghost"`)
}

func TestHydrateSwallowsMalformedState(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	require.NoError(t, storage.Set(ctx, "cartItems", "{not json"))
	require.NoError(t, storage.Set(ctx, "recentItems", "also not json"))

	store := newTestStore(t, storage)
	require.Empty(t, store.Items())
	require.Empty(t, store.RecentItems())
}

func TestNewStoreValidatesParams(t *testing.T) {
	_, err := NewStore(context.Background(), StoreParams{Logger: testLogger(), ItemsKey: "a", RecentKey: "b"})
	require.Error(t, err)

	_, err = NewStore(context.Background(), StoreParams{Storage: kv.NewMemory(), Logger: testLogger(), ItemsKey: "same", RecentKey: "same"})
	require.Error(t, err)
}

func TestManagerScopesStoresBySession(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	manager, err := NewManager(storage, testLogger(), nil, cartTestConfig())
	require.NoError(t, err)

	first, err := manager.ForSession(ctx, "session-1")
	require.NoError(t, err)
	second, err := manager.ForSession(ctx, "session-2")
	require.NoError(t, err)

	first.AddItem(ctx, catalog.Listing{ID: "a", Price: amountPtr(10)}, 1)
	require.Empty(t, second.Items())

	again, err := manager.ForSession(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, again.Items(), 1)

	_, err = manager.ForSession(ctx, "  ")
	require.Error(t, err)
}

func TestManagerEvictsIdleStores(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	manager, err := NewManager(storage, testLogger(), nil, cartTestConfig())
	require.NoError(t, err)

	clock := time.Now()
	manager.now = func() time.Time { return clock }

	idle, err := manager.ForSession(ctx, "session-idle")
	require.NoError(t, err)
	idle.AddItem(ctx, catalog.Listing{ID: "a", Price: amountPtr(10)}, 2)

	// a lookup within the TTL keeps the store cached
	clock = clock.Add(manager.idleTTL / 2)
	_, err = manager.ForSession(ctx, "session-live")
	require.NoError(t, err)
	require.Contains(t, manager.stores, "session-idle")

	clock = clock.Add(manager.idleTTL + time.Minute)
	_, err = manager.ForSession(ctx, "session-live")
	require.NoError(t, err)
	require.NotContains(t, manager.stores, "session-idle")

	// evicted sessions rehydrate their cart from durable storage
	revived, err := manager.ForSession(ctx, "session-idle")
	require.NoError(t, err)
	require.Len(t, revived.Items(), 1)
	require.Equal(t, 2, revived.Items()[0].Quantity)
}
