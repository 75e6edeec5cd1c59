package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amirphl/mini-crm/app/handlers"
	"github.com/amirphl/mini-crm/app/services"
	businessflow "github.com/amirphl/mini-crm/business_flow"
	"github.com/amirphl/mini-crm/config"
	crmtest "github.com/amirphl/mini-crm/testing"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	app       *fiber.App
	customers *crmtest.CustomerMemoryRepository
	provider  *services.MockEmailProvider
}

func newTestServer(t *testing.T, environment string) *testServer {
	t.Helper()

	cfg := &config.ProductionConfig{
		Environment: environment,
		Server:      config.ServerConfig{BodyLimit: 1 << 20},
		Security:    config.SecurityConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Dispatch:    config.DispatchConfig{Concurrency: 1, FromEmail: "campaigns@example.com"},
		Metrics:     config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	customers := crmtest.NewCustomerMemoryRepository()
	orders := crmtest.NewOrderMemoryRepository()
	campaigns := crmtest.NewCampaignMemoryRepository()
	communications := crmtest.NewCommunicationMemoryRepository()
	users := crmtest.NewUserMemoryRepository()
	provider := services.NewMockEmailProvider(nil)
	mailer := services.NewMailService(provider, "noreply@example.com", nil)
	verifier := services.NewGoogleIdentityVerifier("")

	r := NewFiberRouter(cfg, Handlers{
		Health:        handlers.NewHealthHandler(environment),
		Auth:          handlers.NewAuthHandler(businessflow.NewAuthFlow(verifier, users, nil)),
		Customer:      handlers.NewCustomerHandler(businessflow.NewCustomerFlow(customers, nil)),
		Order:         handlers.NewOrderHandler(businessflow.NewOrderFlow(orders, customers, nil)),
		Campaign:      handlers.NewCampaignHandler(businessflow.NewCampaignFlow(campaigns, customers, communications, mailer, cfg.Dispatch, nil)),
		Communication: handlers.NewCommunicationHandler(businessflow.NewCommunicationFlow(communications, campaigns, customers, nil)),
		Email:         handlers.NewEmailHandler(businessflow.NewEmailFlow(mailer, environment, nil)),
	}, nil)
	r.SetupRoutes()

	return &testServer{app: r.GetApp(), customers: customers, provider: provider}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "test")
	status, body := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["environment"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, "test")
	status, body := s.do(t, http.MethodGet, "/api/nope?x=1", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Route not found", body["error"])
	assert.Equal(t, "/api/nope?x=1", body["path"])
}

func TestCustomerUpsertIsIdempotentOnEmail(t *testing.T) {
	s := newTestServer(t, "test")

	status, first := s.do(t, http.MethodPost, "/api/customers", `{"name":"Ada","email":"ada@example.com"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, first["success"])

	status, second := s.do(t, http.MethodPost, "/api/customers", `{"name":"Ada L","email":"ada@example.com","phone":"+1555"}`)
	require.Equal(t, http.StatusCreated, status)

	firstData := first["data"].(map[string]any)
	secondData := second["data"].(map[string]any)
	assert.Equal(t, firstData["id"], secondData["id"])
	assert.Equal(t, "Ada L", secondData["name"])

	status, list := s.do(t, http.MethodGet, "/api/customers", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list["data"], 1)
}

func TestValidationFailure(t *testing.T) {
	s := newTestServer(t, "test")
	status, body := s.do(t, http.MethodPost, "/api/customers", `{"name":"","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "Validation failed", body["message"])
	assert.Len(t, body["errors"], 2)
}

func TestCampaignDispatchOverHTTP(t *testing.T) {
	s := newTestServer(t, "test")
	for _, payload := range []string{
		`{"name":"Ann","email":"ann@example.com"}`,
		`{"name":"Bob","email":"bob@example.com"}`,
		`{"name":"Cid","email":"cid@example.com"}`,
	} {
		status, _ := s.do(t, http.MethodPost, "/api/customers", payload)
		require.Equal(t, http.StatusCreated, status)
	}
	s.provider.FailWhen(func(msg *services.EmailMessage) error {
		if msg.To == "bob@example.com" {
			return errors.New("bounced")
		}
		return nil
	})

	status, body := s.do(t, http.MethodPost, "/api/campaigns",
		`{"name":"Launch","objective":"Announce","message":"Hi {name}","audience_rules":{"min_orders":1}}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"sent": 3.0, "delivered": 2.0, "failed": 1.0}, body["stats"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "completed", data["status"])
	assert.EqualValues(t, 3, data["audience_size"])

	id := data["id"].(string)
	status, logs := s.do(t, http.MethodGet, "/api/campaigns/"+id+"/communications", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, logs["data"], 3)

	status, patched := s.do(t, http.MethodPatch, "/api/campaigns/"+id, `{"status":"failed"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "failed", patched["data"].(map[string]any)["status"])
}

func TestCampaignPatchErrors(t *testing.T) {
	s := newTestServer(t, "test")

	status, _ := s.do(t, http.MethodPatch, "/api/campaigns/00000000-0000-0000-0000-000000000001", `{"sent":1}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := s.do(t, http.MethodPatch, "/api/campaigns/not-a-uuid", `{"sent":1}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body["message"])

	status, _ = s.do(t, http.MethodPatch, "/api/campaigns/00000000-0000-0000-0000-000000000001", `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGoogleLoginFailure(t *testing.T) {
	s := newTestServer(t, "test")
	status, body := s.do(t, http.MethodPost, "/api/auth/google", `{"token":"garbage"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Authentication failed", body["error"])
}

func TestLogout(t *testing.T) {
	s := newTestServer(t, "test")
	status, body := s.do(t, http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Logout successful", body["message"])
}

func TestEmailEndpoints(t *testing.T) {
	s := newTestServer(t, "test")

	status, body := s.do(t, http.MethodGet, "/api/email/status", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["configured"])
	assert.Equal(t, "mock", body["provider"])

	status, body = s.do(t, http.MethodPost, "/api/email/test", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["messageId"])

	s.provider.FailWhen(func(*services.EmailMessage) error { return errors.New("smtp down") })
	status, body = s.do(t, http.MethodPost, "/api/email/send", `{"to":"a@example.com","subject":"s","text":"t"}`)
	assert.Equal(t, http.StatusOK, status, "transport failures are reported in the body")
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "smtp down", body["error"])

	status, body = s.do(t, http.MethodPost, "/api/email/test", `{"to":"b@example.com"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["success"])
}

func TestStorageErrorIsHiddenInProduction(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		t.Run(env, func(t *testing.T) {
			s := newTestServer(t, env)
			s.customers.Fail = func(string) error { return errors.New("relation customers does not exist") }

			status, body := s.do(t, http.MethodGet, "/api/customers", "")
			assert.Equal(t, http.StatusInternalServerError, status)
			assert.Equal(t, true, body["error"])
			if env == "production" {
				assert.Equal(t, "Something went wrong", body["message"])
				assert.Nil(t, body["details"])
			} else {
				assert.Contains(t, body["message"], "relation customers does not exist")
				assert.NotNil(t, body["details"])
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, "test")
	s.do(t, http.MethodGet, "/api/customers", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "http_requests_total")
}
