package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	cartsvc "github.com/aquapeak/cart-service/internal/cart"
	"github.com/aquapeak/cart-service/internal/checkout"
	"github.com/aquapeak/cart-service/pkg/config"
	"github.com/aquapeak/cart-service/pkg/kv"
	"github.com/aquapeak/cart-service/pkg/logger"
)

type stubCheckoutService struct{}

func (stubCheckoutService) Submit(ctx context.Context, sessionID string, store *cartsvc.Store) (*checkout.Receipt, error) {
	return &checkout.Receipt{SubmissionID: "sub-1"}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev, Port: "8080"},
		KV:  config.KVConfig{Backend: config.KVBackendMemory},
		Cart: config.CartConfig{
			ItemsKey:    "cartItems",
			RecentKey:   "recentItems",
			RecentLimit: 3,
		},
		Session: config.SessionConfig{
			Secret:            "router-test-secret",
			Issuer:            "aquapeak",
			ExpirationMinutes: 60,
		},
	}
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	storage := kv.NewMemory()

	manager, err := cartsvc.NewManager(storage, logg, nil, cfg.Cart)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	return NewRouter(cfg, logg, storage, prometheus.NewRegistry(), manager, stubCheckoutService{})
}

func mintToken(t *testing.T, router http.Handler) string {
	t.Helper()
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	if resp.Code != http.StatusCreated {
		t.Fatalf("mint session: expected 201 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode session response: %v", err)
	}
	return envelope.Data.Token
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := testRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := testRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRouterCartRequiresSession(t *testing.T) {
	router := testRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", resp.Code)
	}
}

func TestRouterCartFlow(t *testing.T) {
	router := testRouter(t)
	token := mintToken(t, router)

	authed := func(method, target, body string) *http.Request {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, target, reader)
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authed(http.MethodPost, "/api/v1/cart/items", `{"listing":{"id":"guppy-1","name":"Blue Guppy","price":15},"quantity":2}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("add item: expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed(http.MethodPatch, "/api/v1/cart/items/guppy-1", `{"quantity":3}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("set quantity: expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed(http.MethodGet, "/api/v1/cart", ""))
	if resp.Code != http.StatusOK {
		t.Fatalf("fetch cart: expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Items []struct {
				ID       string `json:"id"`
				Quantity int    `json:"quantity"`
			} `json:"items"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode cart view: %v", err)
	}
	if len(envelope.Data.Items) != 1 || envelope.Data.Items[0].Quantity != 3 {
		t.Fatalf("unexpected cart contents: %+v", envelope.Data.Items)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed(http.MethodPost, "/api/v1/checkout", ""))
	if resp.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed(http.MethodDelete, "/api/v1/cart/items/guppy-1", ""))
	if resp.Code != http.StatusOK {
		t.Fatalf("remove item: expected 200 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed(http.MethodDelete, "/api/v1/cart", ""))
	if resp.Code != http.StatusOK {
		t.Fatalf("clear cart: expected 200 got %d", resp.Code)
	}
}
