package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Devis28/melody-now/internal/config"
	"github.com/Devis28/melody-now/internal/melody"
	"github.com/Devis28/melody-now/internal/registry"
	"github.com/Devis28/melody-now/pkg/logger"
)

const pageFixture = `<html>
<head><title>Rádio Melody - playlist</title></head>
<body>
<h1 class="radio_nazov">Rádio Melody</h1>
<div class="row data">
  <span class="datum">Dnes</span>
  <span class="cas">14:32</span>
  <span class="interpret">Queen</span>
  <span class="titul">Radio Ga Ga</span>
</div>
</body></html>`

// newTestService wires a Service against a stubbed playlist page.
func newTestService(t *testing.T, pageURL string) *Service {
	t.Helper()
	log := logger.NewDefault("app-test")
	station := config.DefaultStation()
	station.PlaylistURL = pageURL

	return &Service{
		log:     log,
		station: station,
		core: melody.NewCore(melody.CoreConfig{
			Fetcher:         melody.NewFetcher(melody.FetcherConfig{URL: pageURL, Logger: log}),
			Params:          melody.DefaultParams(),
			FallbackStation: station.Name,
		}),
		hub:  newHub(log),
		done: make(chan struct{}),
	}
}

func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pageFixture))
	}))
	t.Cleanup(server.Close)
	return server
}

// =============================================================================
// HTTP endpoints
// =============================================================================

func TestHandleNow(t *testing.T) {
	page := newPageServer(t)
	svc := newTestService(t, page.URL)

	api := httptest.NewServer(svc.Router())
	defer api.Close()

	resp, err := http.Get(api.URL + "/now")
	if err != nil {
		t.Fatalf("GET /now error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /now status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}

	var track melody.Track
	if err := json.NewDecoder(resp.Body).Decode(&track); err != nil {
		t.Fatalf("failed to decode /now response: %v", err)
	}
	if track.Artist != "Queen" || track.Title != "Radio Ga Ga" {
		t.Errorf("track = %+v, want Queen / Radio Ga Ga", track)
	}
	if track.Station != "Rádio Melody" {
		t.Errorf("Station = %q, want Rádio Melody", track.Station)
	}
	if track.Listeners <= 0 {
		t.Errorf("Listeners = %d, want a positive estimate", track.Listeners)
	}
}

func TestHandleNow_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer upstream.Close()

	svc := newTestService(t, upstream.URL)
	api := httptest.NewServer(svc.Router())
	defer api.Close()

	resp, err := http.Get(api.URL + "/now")
	if err != nil {
		t.Fatalf("GET /now error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("GET /now status = %d, want 502", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body["error"] == "" {
		t.Error("error body should carry an error message")
	}
}

func TestHandleHealth(t *testing.T) {
	svc := newTestService(t, newPageServer(t).URL)
	api := httptest.NewServer(svc.Router())
	defer api.Close()

	resp, err := http.Get(api.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status = %d, want 200", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	svc := newTestService(t, newPageServer(t).URL)
	api := httptest.NewServer(svc.Router())
	defer api.Close()

	resp, err := http.Get(api.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /metrics status = %d, want 200", resp.StatusCode)
	}
}

// =============================================================================
// Websocket stream
// =============================================================================

func TestWebsocketReceivesBroadcast(t *testing.T) {
	svc := newTestService(t, newPageServer(t).URL)
	api := httptest.NewServer(svc.Router())
	defer api.Close()

	wsURL := "ws" + strings.TrimPrefix(api.URL, "http") + "/ws/now"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()

	// Wait for the registration to land before broadcasting.
	deadline := time.Now().Add(2 * time.Second)
	for svc.hub.clientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if svc.hub.clientCount() != 1 {
		t.Fatal("client did not register with the hub")
	}

	payload := []byte(`{"station":"Rádio Melody","artist":"Queen","title":"Radio Ga Ga","date":"12.10.2025","time":"14:32","listeners":2100}`)
	svc.hub.broadcast(payload)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("websocket read error = %v", err)
	}

	var track melody.Track
	if err := json.Unmarshal(msg, &track); err != nil {
		t.Fatalf("failed to decode websocket payload: %v", err)
	}
	if track.Artist != "Queen" || track.Listeners != 2100 {
		t.Errorf("payload = %+v, want the broadcast track", track)
	}
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	svc := newTestService(t, newPageServer(t).URL)
	api := httptest.NewServer(svc.Router())
	defer api.Close()

	wsURL := "ws" + strings.TrimPrefix(api.URL, "http") + "/ws/now"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for svc.hub.clientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	svc.hub.close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("read after hub close should fail with a close frame")
	}
	if svc.hub.clientCount() != 0 {
		t.Errorf("clientCount() = %d after close, want 0", svc.hub.clientCount())
	}
}

// =============================================================================
// Registration
// =============================================================================

func TestAppRegistersItself(t *testing.T) {
	if !registry.Default.IsRegistered("app", "app") {
		t.Error(`the "app:app" service is not registered`)
	}
}
