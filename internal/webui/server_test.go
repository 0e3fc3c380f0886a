package webui

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/steerctl/internal/config"
	"github.com/danmuck/steerctl/internal/testutil/testlog"
)

func newTestServer(t *testing.T, webrtcdAddr string) *Server {
	t.Helper()
	cfg := config.DefaultWebConfig()
	cfg.ProxyTimeout = 2 * time.Second
	if webrtcdAddr != "" {
		cfg.WebrtcdAddr = webrtcdAddr
	}
	s := NewServer(cfg)
	s.RegisterRoutes()
	return s
}

func TestIndexServesSteeringPage(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type: %s", ct)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<title>Steering Control</title>") {
		t.Fatalf("page title missing")
	}
	if !strings.Contains(body, "fetch('/offer'") {
		t.Fatalf("page should negotiate via /offer")
	}
}

func TestHealthReportsService(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "webctl" {
		t.Fatalf("unexpected health body: %#v", body)
	}
}

func TestOfferProxiesToStreamDaemon(t *testing.T) {
	testlog.Start(t)

	var got StreamRequest
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stream" {
			t.Errorf("unexpected upstream path: %s", r.URL.Path)
		}
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read upstream body: %v", err)
		}
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Errorf("decode upstream body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sdp":"answer-sdp","type":"answer"}`))
	}))
	defer upstream.Close()

	s := newTestServer(t, strings.TrimPrefix(upstream.URL, "http://"))

	req := httptest.NewRequest(http.MethodPost, "/offer",
		strings.NewReader(`{"sdp":"offer-sdp","type":"offer"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	if got.SDP != "offer-sdp" {
		t.Fatalf("sdp not relayed: %+v", got)
	}
	if len(got.Cameras) != 2 || got.Cameras[0] != "road" || got.Cameras[1] != "driver" {
		t.Fatalf("unexpected cameras: %+v", got)
	}
	if len(got.BridgeServicesIn) != 1 || got.BridgeServicesIn[0] != "testJoystick" {
		t.Fatalf("unexpected bridge services in: %+v", got)
	}
	if len(got.BridgeServicesOut) != 1 || got.BridgeServicesOut[0] != "carState" {
		t.Fatalf("unexpected bridge services out: %+v", got)
	}

	var answer map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &answer); err != nil {
		t.Fatalf("decode answer: %v", err)
	}
	if answer["sdp"] != "answer-sdp" || answer["type"] != "answer" {
		t.Fatalf("answer not relayed: %#v", answer)
	}
}

func TestOfferSurfacesUpstreamError(t *testing.T) {
	testlog.Start(t)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no cameras available", http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	s := newTestServer(t, strings.TrimPrefix(upstream.URL, "http://"))

	req := httptest.NewRequest(http.MethodPost, "/offer",
		strings.NewReader(`{"sdp":"offer-sdp","type":"offer"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !strings.Contains(body["error"], "no cameras available") {
		t.Fatalf("upstream text should be relayed: %#v", body)
	}
}

func TestOfferReportsUnreachableDaemon(t *testing.T) {
	testlog.Start(t)

	// A server that is immediately closed leaves a dead address behind.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadAddr := strings.TrimPrefix(upstream.URL, "http://")
	upstream.Close()

	s := newTestServer(t, deadAddr)

	req := httptest.NewRequest(http.MethodPost, "/offer",
		strings.NewReader(`{"sdp":"offer-sdp","type":"offer"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestOfferRejectsBadJSON(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodPost, "/offer", strings.NewReader(`{"sdp":`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
