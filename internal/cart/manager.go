package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aquapeak/cart-service/pkg/config"
	"github.com/aquapeak/cart-service/pkg/kv"
	"github.com/aquapeak/cart-service/pkg/logger"
	"github.com/aquapeak/cart-service/pkg/metrics"
)

const defaultStoreIdleTTL = 30 * time.Minute

type managerEntry struct {
	store    *Store
	lastSeen time.Time
}

// Manager hands out one Store per session. Stores idle longer than the
// configured TTL are evicted on the next lookup; their state lives in
// durable storage, so an evicted session rehydrates the same cart on its
// next request, same as after a restart.
type Manager struct {
	mu      sync.Mutex
	stores  map[string]*managerEntry
	storage kv.Store
	logg    *logger.Logger
	metrics *metrics.CartMetrics
	cfg     config.CartConfig
	idleTTL time.Duration
	now     func() time.Time
}

// NewManager builds a store manager backed by the provided storage.
func NewManager(storage kv.Store, logg *logger.Logger, cartMetrics *metrics.CartMetrics, cfg config.CartConfig) (*Manager, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.ItemsKey == "" || cfg.RecentKey == "" {
		return nil, fmt.Errorf("cart keys required")
	}
	idleTTL := cfg.StoreIdleTTL
	if idleTTL <= 0 {
		idleTTL = defaultStoreIdleTTL
	}
	return &Manager{
		stores:  map[string]*managerEntry{},
		storage: storage,
		logg:    logg,
		metrics: cartMetrics,
		cfg:     cfg,
		idleTTL: idleTTL,
		now:     time.Now,
	}, nil
}

// ForSession returns the session's store, hydrating it on first use.
func (m *Manager) ForSession(ctx context.Context, sessionID string) (*Store, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.evictIdle(now)

	if entry, ok := m.stores[sessionID]; ok {
		entry.lastSeen = now
		return entry.store, nil
	}

	store, err := NewStore(ctx, StoreParams{
		Storage:     m.storage,
		Logger:      m.logg,
		Metrics:     m.metrics,
		ItemsKey:    sessionKey(sessionID, m.cfg.ItemsKey),
		RecentKey:   sessionKey(sessionID, m.cfg.RecentKey),
		RecentLimit: m.cfg.RecentLimit,
	})
	if err != nil {
		return nil, err
	}
	m.stores[sessionID] = &managerEntry{store: store, lastSeen: now}
	return store, nil
}

// evictIdle drops cached stores not touched within the idle TTL. Caller
// holds the lock.
func (m *Manager) evictIdle(now time.Time) {
	for sessionID, entry := range m.stores {
		if now.Sub(entry.lastSeen) > m.idleTTL {
			delete(m.stores, sessionID)
		}
	}
}

func sessionKey(sessionID, key string) string {
	return fmt.Sprintf("session:%s:%s", sessionID, key)
}
