package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/evanhutch/helpbot/internal/gateway"
	"github.com/evanhutch/helpbot/internal/health"
	"github.com/evanhutch/helpbot/internal/knowledge"
	"github.com/evanhutch/helpbot/internal/match"
	"github.com/evanhutch/helpbot/internal/memory"
)

type fixedKnowledge struct{}

func (fixedKnowledge) Entries() []knowledge.Entry {
	return []knowledge.Entry{
		{Topic: "wifi", Question: "how do I connect to wifi", Answer: "SSID Corp-Net.", Keywords: []string{"wifi"}},
	}
}

type plainComposer struct{}

func (plainComposer) Compose(result *match.Result, userID string) string {
	if result == nil {
		return "no answer"
	}
	return result.Answer
}

func newRouterTestHandler(t *testing.T) (http.Handler, *health.Registry) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := memory.NewFileStore(filepath.Join(t.TempDir(), "m.json"), 10, logger)
	if err != nil {
		t.Fatalf("create memory store: %v", err)
	}

	service := gateway.New(
		gateway.Config{BotName: "helpbot", Threshold: 0.3},
		fixedKnowledge{},
		match.KeywordFirst{},
		match.Detector{},
		plainComposer{},
		nil,
		store,
		nil,
		logger,
	)

	registry := health.NewRegistry()
	handler := NewRouter(Dependencies{
		BotName: "helpbot",
		Version: "test",
		Service: service,
		Memory:  store,
		Health:  registry,
		Logger:  logger,
	})
	return handler, registry
}

func TestHealthEndpoints(t *testing.T) {
	handler, registry := newRouterTestHandler(t)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 from healthz, got %d", res.Code)
	}

	registry.Set("connector", health.StateDegraded, "socket closed")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from readyz while degraded, got %d", res.Code)
	}

	registry.Set("connector", health.StateHealthy, "")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 from readyz, got %d", res.Code)
	}
}

func TestInfoEndpointListsCommands(t *testing.T) {
	handler, _ := newRouterTestHandler(t)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/v1/info", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var payload struct {
		Name     string                 `json:"name"`
		Version  string                 `json:"version"`
		Commands []gateway.SlashCommand `json:"commands"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode info payload: %v", err)
	}
	if payload.Name != "helpbot" || payload.Version != "test" {
		t.Fatalf("unexpected identity %q %q", payload.Name, payload.Version)
	}
	if len(payload.Commands) != len(gateway.SlashCommands()) {
		t.Fatalf("expected command catalog, got %d entries", len(payload.Commands))
	}
	if payload.Commands[0].Name != "ask" {
		t.Fatalf("expected ask first, got %q", payload.Commands[0].Name)
	}
}

func TestAskEndpoint(t *testing.T) {
	handler, _ := newRouterTestHandler(t)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewBufferString(`{"user_id":"U1"}`)))
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing question, got %d", res.Code)
	}

	body := bytes.NewBufferString(`{"user_id":"U1","question":"how do I join the wifi?"}`)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/api/v1/ask", body))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var payload askResponse
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode ask payload: %v", err)
	}
	if payload.Reply != "SSID Corp-Net." {
		t.Fatalf("expected knowledge answer, got %q", payload.Reply)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/v1/ask", nil))
	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET, got %d", res.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	handler, _ := newRouterTestHandler(t)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing user_id, got %d", res.Code)
	}

	body := bytes.NewBufferString(`{"user_id":"U1","question":"wifi please"}`)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/api/v1/ask", body))
	if res.Code != http.StatusOK {
		t.Fatalf("seed ask failed with %d", res.Code)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/v1/history?user_id=U1", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var payload struct {
		UserID  string          `json:"user_id"`
		Records []memory.Record `json:"records"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode history payload: %v", err)
	}
	if len(payload.Records) != 1 {
		t.Fatalf("expected one record, got %d", len(payload.Records))
	}
	if payload.Records[0].Question != "wifi please" {
		t.Fatalf("unexpected question %q", payload.Records[0].Question)
	}
}
