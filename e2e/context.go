//go:build e2e

package e2e

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loot/internal/bag/credential"
	"loot/internal/bag/handler"
	bagmetrics "loot/internal/bag/metrics"
	"loot/internal/bag/pluck"
	"loot/internal/bag/service"
	"loot/internal/caller"
	"loot/internal/platform/config"
	"loot/internal/platform/health"
	"loot/internal/platform/kv/memory"
	"loot/internal/platform/metrics"
	httptransport "loot/internal/transport/http"
	"loot/pkg/domain"
	"loot/pkg/testutil"
)

// TestContext holds state between test steps.
//
// When BASE_URL is set the scenarios run against that server, which must
// share LOOT_JWT_SIGNING_KEY, LOOT_ADMIN_ADDRESS and LOOT_ADMIN_RECIPIENT with
// the test process. Otherwise every scenario gets a fresh in-process server
// backed by the memory store.
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	tokens    *caller.TokenService
	personas  map[string]domain.Address
	principal *caller.Principal
	saved     map[string]string
	server    *httptest.Server
}

// NewTestContext creates a new test context.
func NewTestContext() *TestContext {
	tc := &TestContext{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
	tc.Reset()
	return tc
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.LastResponse = nil
	tc.LastResponseBody = nil
	tc.principal = nil
	tc.saved = make(map[string]string)
	tc.personas = map[string]domain.Address{
		"alice":     testutil.TestAddresses.Alice,
		"bob":       testutil.TestAddresses.Bob,
		"admin":     testutil.TestAddresses.Admin,
		"recipient": testutil.TestAddresses.Recipient,
	}
}

// Start points the context at BASE_URL or boots an in-process server.
func (tc *TestContext) Start() error {
	if base := os.Getenv("BASE_URL"); base != "" {
		return tc.useRemote(base)
	}

	tc.tokens = caller.NewTokenService("e2e-signing-key-0123456789", "loot", time.Minute)

	reg := prometheus.NewRegistry()
	bagMetrics := bagmetrics.NewWithRegisterer(reg)
	store := memory.New()
	svc, err := service.New(store,
		credential.NewCryptoSource(rand.Reader),
		pluck.New(nil, pluck.SchemeSHA256, pluck.WithObserver(bagMetrics)),
		service.Config{Admin: tc.personas["admin"], Recipient: tc.personas["recipient"]},
		service.WithMetrics(bagMetrics),
	)
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}
	hc := health.New("e2e")
	hc.RegisterCheck("kv", store.Health)

	tc.server = httptest.NewServer(httptransport.NewRouter(httptransport.RouterDeps{
		Bags:           handler.New(svc, nil),
		Health:         hc,
		Tokens:         tc.tokens,
		Admin:          tc.personas["admin"],
		Metrics:        metrics.NewWithRegisterer(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}))
	tc.BaseURL = tc.server.URL
	return nil
}

func (tc *TestContext) useRemote(base string) error {
	tc.BaseURL = strings.TrimSuffix(base, "/")
	tc.tokens = caller.NewTokenService(envOr("LOOT_JWT_SIGNING_KEY", config.DevJWTSigningKey), envOr("LOOT_JWT_ISSUER", "loot"), time.Minute)

	admin, err := domain.ParseAddress(envOr("LOOT_ADMIN_ADDRESS", config.DevAdminAddress))
	if err != nil {
		return fmt.Errorf("LOOT_ADMIN_ADDRESS: %w", err)
	}
	tc.personas["admin"] = admin
	tc.personas["recipient"] = admin
	if v := os.Getenv("LOOT_ADMIN_RECIPIENT"); v != "" {
		if tc.personas["recipient"], err = domain.ParseAddress(v); err != nil {
			return fmt.Errorf("LOOT_ADMIN_RECIPIENT: %w", err)
		}
	}
	return nil
}

// Stop shuts down the in-process server, if any.
func (tc *TestContext) Stop() {
	if tc.server != nil {
		tc.server.Close()
		tc.server = nil
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Persona returns the address behind a scenario name such as "alice".
func (tc *TestContext) Persona(name string) (domain.Address, error) {
	a, ok := tc.personas[strings.ToLower(name)]
	if !ok {
		return domain.Address{}, fmt.Errorf("unknown persona %q", name)
	}
	return a, nil
}

// ActAs makes subsequent requests carry a token for p. A nil p sends none.
func (tc *TestContext) ActAs(p *caller.Principal) {
	tc.principal = p
}

// Save remembers a value for later steps.
func (tc *TestContext) Save(key, value string) { tc.saved[key] = value }

// Saved returns a remembered value.
func (tc *TestContext) Saved(key string) (string, error) {
	v, ok := tc.saved[key]
	if !ok {
		return "", fmt.Errorf("nothing saved under %q", key)
	}
	return v, nil
}

// POST makes a POST request without a body and stores the response.
func (tc *TestContext) POST(path string) error {
	return tc.do(http.MethodPost, path)
}

// GET makes a GET request and stores the response.
func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path)
}

func (tc *TestContext) do(method, path string) error {
	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if tc.principal != nil {
		token, err := tc.tokens.Issue(req.Context(), *tc.principal)
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a top-level field from the JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

// ResponseContains checks if the response body contains text.
func (tc *TestContext) ResponseContains(text string) bool {
	return strings.Contains(string(tc.LastResponseBody), text)
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}
