package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yulishop/storefront/internal/clientstore"
	"github.com/yulishop/storefront/internal/mockbackend"
	"github.com/yulishop/storefront/internal/storefront"
	"github.com/yulishop/storefront/pkg/config"
	"github.com/yulishop/storefront/pkg/metrics"
)

// testEnv is a storefront API wired to an in-process mock order backend.
type testEnv struct {
	cfg      *config.Config
	book     *mockbackend.OrderBook
	backend  *httptest.Server
	store    *clientstore.MemoryStore
	pipeline *storefront.Pipeline
	registry *prometheus.Registry
	handler  http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		App:   config.AppConfig{Env: "test", LogLevel: "error"},
		Store: config.StoreConfig{Backend: config.StoreBackendMemory, Namespace: "test"},
		Pricing: config.PricingConfig{
			FreeShippingThresholdCents: 10000,
			StandardShippingCents:      490,
			ExpressShippingCents:       990,
			PromoCodes:                 []string{"WELCOME10:0.10"},
		},
		Orders:   config.OrdersConfig{Timeout: 2 * time.Second, BreakerMaxFailures: 5, BreakerOpenTimeout: time.Minute},
		Catalog:  config.CatalogConfig{Timeout: 2 * time.Second},
		JWT:      config.JWTConfig{Secret: "test-secret", Issuer: "yulishop", ExpirationMinutes: 30},
		Mock:     config.MockBackendConfig{IdempotencyTTL: time.Hour},
		Features: config.FeatureFlagsConfig{ServeMetrics: true},
	}
}

func newTestEnv() (*testEnv, error) {
	cfg := testConfig()
	book := mockbackend.NewOrderBook(false, nil)
	backend := httptest.NewServer(NewMockRouter(cfg, nil, book, mockbackend.DefaultCatalog(), mockbackend.NewMemoryIdempotency()))
	cfg.Orders.BaseURL = backend.URL + "/api"
	cfg.Catalog.BaseURL = backend.URL + "/api"

	store := clientstore.NewMemoryStore()
	registry := prometheus.NewRegistry()
	pipeline, err := storefront.Build(context.Background(), cfg, store, nil, metrics.NewPipelineMetrics(registry), storefront.Options{
		HTTPClient: backend.Client(),
	})
	if err != nil {
		backend.Close()
		return nil, err
	}

	pingers := map[string]func(context.Context) error{
		"orders": func(context.Context) error { return nil },
	}
	return &testEnv{
		cfg:      cfg,
		book:     book,
		backend:  backend,
		store:    store,
		pipeline: pipeline,
		registry: registry,
		handler:  NewRouter(cfg, nil, pipeline, pingers, registry),
	}, nil
}

func (e *testEnv) close() {
	e.pipeline.Close()
	e.backend.Close()
}

// envelope mirrors the API response shape with the data left raw.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func (e *testEnv) do(method, path string, body any) (int, envelope, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, envelope{}, err
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			return rec.Code, envelope{}, fmt.Errorf("decode %s %s response %q: %w", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, env, nil
}

func (e *testEnv) decode(method, path string, body any, dest any) (int, envelope, error) {
	status, env, err := e.do(method, path, body)
	if err != nil || dest == nil || len(env.Data) == 0 {
		return status, env, err
	}
	return status, env, json.Unmarshal(env.Data, dest)
}

func validCustomer() map[string]any {
	return map[string]any{
		"firstName":  "Lea",
		"lastName":   "Martin",
		"email":      "lea@example.com",
		"street":     "Hauptstr. 1",
		"city":       "Berlin",
		"postalCode": "10115",
		"country":    "Germany",
		"saveInfo":   true,
	}
}

func validCard() map[string]any {
	return map[string]any{
		"cardholderName": "Lea Martin",
		"cardNumber":     "4242 4242 4242 4242",
		"expiry":         "12/29",
		"cvc":            "123",
	}
}
