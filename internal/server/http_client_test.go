package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/any-hub/resource-hub/internal/config"
)

func TestNewUpstreamClientUsesConfigTimeout(t *testing.T) {
	cfg := &config.Config{
		Global: config.GlobalConfig{
			UpstreamTimeout: config.Duration(45 * time.Second),
		},
	}

	client := NewUpstreamClient(cfg)
	if client.Timeout != 45*time.Second {
		t.Fatalf("expected timeout 45s, got %s", client.Timeout)
	}
	if fallback := NewUpstreamClient(nil); fallback.Timeout != 30*time.Second {
		t.Fatalf("expected default timeout 30s, got %s", fallback.Timeout)
	}
}

func TestUpstreamClientSetsUserAgent(t *testing.T) {
	var agents []string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer upstream.Close()

	client := NewUpstreamClient(nil)

	resp, err := client.Get(upstream.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodGet, upstream.URL, nil)
	req.Header.Set("User-Agent", "custom/1.0")
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if len(agents) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(agents))
	}
	if !strings.HasPrefix(agents[0], "resource-hub/") {
		t.Fatalf("expected default user agent, got %s", agents[0])
	}
	if agents[1] != "custom/1.0" {
		t.Fatalf("explicit user agent should be kept, got %s", agents[1])
	}
}
