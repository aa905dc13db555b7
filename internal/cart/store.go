package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aquapeak/cart-service/internal/catalog"
	"github.com/aquapeak/cart-service/pkg/kv"
	"github.com/aquapeak/cart-service/pkg/logger"
	"github.com/aquapeak/cart-service/pkg/metrics"
	"github.com/aquapeak/cart-service/pkg/money"
	"go.uber.org/multierr"
)

const defaultRecentLimit = 3

// ErrQuantityFloor signals an update that would take a line below one unit.
// The store leaves the line untouched; removal is its own operation.
var ErrQuantityFloor = errors.New("cart: quantity must be at least 1")

// ErrLineNotFound signals an update against a product id with no line.
var ErrLineNotFound = errors.New("cart: no line for product")

// Store holds the cart's line items plus the bounded recent-items preview
// list. Every mutation is persisted best-effort under the two configured
// keys; reads never touch storage after hydration. A single mutex serializes
// in-process writers; across processes, last write wins.
type Store struct {
	mu          sync.Mutex
	items       []LineItem
	recent      []LineItem
	storage     kv.Store
	logg        *logger.Logger
	metrics     *metrics.CartMetrics
	itemsKey    string
	recentKey   string
	recentLimit int
}

// StoreParams configures a cart store.
type StoreParams struct {
	Storage     kv.Store
	Logger      *logger.Logger
	Metrics     *metrics.CartMetrics
	ItemsKey    string
	RecentKey   string
	RecentLimit int
}

// NewStore hydrates a cart store from durable storage. Missing or malformed
// persisted state degrades to an empty cart.
func NewStore(ctx context.Context, params StoreParams) (*Store, error) {
	if params.Storage == nil {
		return nil, fmt.Errorf("storage required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.ItemsKey == "" || params.RecentKey == "" {
		return nil, fmt.Errorf("items and recent keys required")
	}
	if params.ItemsKey == params.RecentKey {
		return nil, fmt.Errorf("items and recent keys must differ")
	}
	if params.RecentLimit <= 0 {
		params.RecentLimit = defaultRecentLimit
	}

	s := &Store{
		storage:     params.Storage,
		logg:        params.Logger,
		metrics:     params.Metrics,
		itemsKey:    params.ItemsKey,
		recentKey:   params.RecentKey,
		recentLimit: params.RecentLimit,
	}
	s.items = s.hydrate(ctx, s.itemsKey)
	s.recent = s.hydrate(ctx, s.recentKey)
	if len(s.recent) > s.recentLimit {
		s.recent = s.recent[:s.recentLimit]
	}
	return s, nil
}

// AddItem merges the listing into the cart. An existing line keeps its frozen
// unit price and gains quantity; a new line resolves its price once. The
// operation always succeeds: an unresolvable price defaults to zero and is
// recorded as an anomaly.
func (s *Store) AddItem(ctx context.Context, listing catalog.Listing, qty int) LineItem {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var line LineItem
	if idx := s.indexOf(listing.ID); idx >= 0 {
		s.items[idx].Quantity += qty
		line = s.items[idx]
	} else {
		line = newLineItem(listing, qty)
		if line.PriceUnresolved {
			s.metrics.IncUnresolvedPrice(line.Category)
			warnCtx := s.logg.WithProductID(ctx, line.ID)
			s.logg.Warn(warnCtx, "cart.price_unresolved")
		}
		s.items = append(s.items, line)
	}

	s.pushRecent(line)
	s.persist(ctx)
	return line
}

// RemoveItem drops the line from both lists. No-op when absent.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	if idx := s.indexOf(id); idx >= 0 {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
		changed = true
	}
	if idx := indexOfLine(s.recent, id); idx >= 0 {
		s.recent = append(s.recent[:idx], s.recent[idx+1:]...)
		changed = true
	}
	if changed {
		s.persist(ctx)
	}
}

// SetQuantity replaces the line's quantity in both lists. Values below one
// are rejected with the state unchanged; stock limits are the caller's
// concern and are never consulted here.
func (s *Store) SetQuantity(ctx context.Context, id string, qty int) error {
	if qty < 1 {
		return ErrQuantityFloor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrLineNotFound
	}
	s.items[idx].Quantity = qty
	if recentIdx := indexOfLine(s.recent, id); recentIdx >= 0 {
		s.recent[recentIdx].Quantity = qty
	}
	s.persist(ctx)
	return nil
}

// Clear empties both lists.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.recent = nil
	s.persist(ctx)
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.items)
}

// RecentItems returns a copy of the preview list, most recent first.
func (s *Store) RecentItems() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.recent)
}

// Totals recomputes the subtotal on every call. Lines with non-positive
// quantities can only come from tampered storage; they contribute nothing
// and the anomaly is counted.
func (s *Store) Totals(ctx context.Context) Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := Totals{Subtotal: money.Zero()}
	for _, line := range s.items {
		if line.Quantity < 1 {
			totals.SkippedLines++
			s.metrics.IncSkippedLine()
			s.logg.Warn(s.logg.WithProductID(ctx, line.ID), "cart.totals_line_skipped")
			continue
		}
		totals.Subtotal = totals.Subtotal.Add(money.LineTotal(line.UnitPrice, line.Quantity))
	}
	return totals
}

func (s *Store) indexOf(id string) int {
	return indexOfLine(s.items, id)
}

func indexOfLine(lines []LineItem, id string) int {
	for i, line := range lines {
		if line.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) pushRecent(line LineItem) {
	if idx := indexOfLine(s.recent, line.ID); idx >= 0 {
		s.recent = append(s.recent[:idx], s.recent[idx+1:]...)
	}
	s.recent = append([]LineItem{line}, s.recent...)
	if len(s.recent) > s.recentLimit {
		s.recent = s.recent[:s.recentLimit]
	}
}

// persist writes both lists best-effort. Failures are logged and counted but
// never surfaced to the caller; the in-memory state stays authoritative.
func (s *Store) persist(ctx context.Context) {
	err := multierr.Combine(
		s.persistList(ctx, s.itemsKey, s.items),
		s.persistList(ctx, s.recentKey, s.recent),
	)
	if err != nil {
		s.logg.Error(ctx, "cart.persist_failed", err)
	}
}

func (s *Store) persistList(ctx context.Context, key string, lines []LineItem) error {
	payload, err := json.Marshal(copyLines(lines))
	if err == nil {
		err = s.storage.Set(ctx, key, string(payload))
	}
	if err != nil {
		s.metrics.IncPersistFailure(key)
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

func (s *Store) hydrate(ctx context.Context, key string) []LineItem {
	raw, err := s.storage.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "key", key), "cart.hydrate_read_failed")
		return nil
	}
	var lines []LineItem
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "key", key), "cart.hydrate_malformed_state")
		return nil
	}
	return lines
}

func copyLines(lines []LineItem) []LineItem {
	out := make([]LineItem, len(lines))
	copy(out, lines)
	return out
}
