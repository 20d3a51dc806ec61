package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stratlens/stratlens/internal/config"
)

func testServer() *Server {
	cfg := &config.Config{
		News:      config.NewsConfig{Language: "en", PageSize: 10},
		Sentiment: config.SentimentConfig{Model: "fast"},
		Alerts:    config.AlertsConfig{SpikeThreshold: 0.5, DigestLimit: 10},
		Forecast:  config.ForecastConfig{Days: 14},
		Analysis:  config.AnalysisConfig{CacheTTL: 60, ConcurrentFetches: 2, DefaultRangeDays: 7},
		API:       config.APIConfig{Host: "127.0.0.1", Port: 0},
	}
	return NewServer(cfg)
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer()

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := doRequest(t, srv, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: got %d, want 200", path, rec.Code)
		}
		resp := decodeResponse(t, rec)
		if !resp.Success {
			t.Errorf("%s: success=false", path)
		}
	}
}

func TestAnalyzeRejectsBadRequests(t *testing.T) {
	srv := testServer()

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{not json"},
		{"missing keywords", `{}`},
		{"empty keywords", `{"keywords": []}`},
		{"bad from date", `{"keywords": ["Acme"], "from": "03-10-2025"}`},
		{"bad to date", `{"keywords": ["Acme"], "to": "yesterday"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/v1/analyze", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400", rec.Code)
			}
			resp := decodeResponse(t, rec)
			if resp.Success || resp.Error == "" {
				t.Errorf("expected error envelope, got %+v", resp)
			}
		})
	}
}

func TestTriggersEndpoint(t *testing.T) {
	srv := testServer()

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/triggers", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}

	var resp struct {
		Success bool          `json:"success"`
		Data    []TriggerInfo `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 12 {
		t.Errorf("trigger count: got %d, want 12", len(resp.Data))
	}
	if resp.Data[0].Word != "partnership" || resp.Data[0].Category != "Partnership/Alliance" {
		t.Errorf("first trigger: %+v", resp.Data[0])
	}
}

func TestNotifyTestWithoutChannels(t *testing.T) {
	srv := testServer()

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/notify/test", `{"message": "hi"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400 when no channels configured", rec.Code)
	}
}

func TestConfigKeysEndpoint(t *testing.T) {
	srv := testServer()

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/config/keys", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}

	var resp struct {
		Success bool               `json:"success"`
		Data    []config.KeyStatus `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) == 0 {
		t.Error("expected key statuses")
	}
	for _, ks := range resp.Data {
		if ks.IsSet {
			t.Errorf("key %q should be unset in the test config", ks.Name)
		}
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	srv := testServer()
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/quotes", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rec.Code)
	}
}

func TestWSHubBroadcastAndCount(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	client := &WSClient{hub: hub, send: make(chan WSMessage, 4)}
	hub.Register(client)

	hub.Broadcast(WSMessage{Type: "analysis_complete"})

	select {
	case msg := <-client.send:
		if msg.Type != "analysis_complete" {
			t.Errorf("message type: got %q", msg.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast never reached the client")
	}

	if hub.ClientCount() != 1 {
		t.Errorf("client count: got %d, want 1", hub.ClientCount())
	}

	hub.Unregister(client)
}

func TestWSClientSendAfterEviction(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	client := &WSClient{hub: hub, send: make(chan WSMessage, 4)}
	hub.Register(client)
	hub.Unregister(client)

	// The hub closes the send channel when it processes the unregister;
	// wait for that before poking the client.
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("hub never processed the unregister")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Must not panic on the closed channel, and must report failure.
	if client.trySend(WSMessage{Type: "pong"}) {
		t.Error("trySend after eviction should report failure")
	}
}

func TestWSClientTrySendFullBuffer(t *testing.T) {
	client := &WSClient{send: make(chan WSMessage, 1)}

	if !client.trySend(WSMessage{Type: "pong"}) {
		t.Fatal("first send should fit the buffer")
	}
	if client.trySend(WSMessage{Type: "pong"}) {
		t.Error("send into a full buffer should report failure, not block")
	}
}
