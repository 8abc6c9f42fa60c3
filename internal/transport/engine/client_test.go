package engine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/querykit/internal/metrics"
	"github.com/kailas-cloud/querykit/pkg/bulk"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(elasticProduct(h))
	t.Cleanup(srv.Close)

	c, err := NewClient(&Config{URL: srv.URL + "/", Username: "elastic", Password: "secret"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

// elasticProduct marks responses the way a real cluster does; the client rejects 2xx
// answers without the product header.
func elasticProduct(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		h.ServeHTTP(w, r)
	})
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"no scheme", "localhost:9200"},
		{"bad scheme", "ftp://localhost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(&Config{URL: tt.url}); err == nil {
				t.Fatalf("expected error for %q", tt.url)
			}
		})
	}
}

func TestSearch_Success(t *testing.T) {
	before := testutil.ToFloat64(metrics.EngineRequestsTotal.WithLabelValues("search", "200"))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/posts,users/_search" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); !strings.Contains(ct, "json") {
			t.Errorf("content type = %q", ct)
		}
		if u, p, ok := r.BasicAuth(); !ok || u != "elastic" || p != "secret" {
			t.Errorf("basic auth = %q %q %v", u, p, ok)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["size"] != float64(5) {
			t.Errorf("size = %v", body["size"])
		}
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":0},"hits":[]}}`))
	})

	data, err := c.Search(context.Background(), "posts,users", map[string]any{"size": 5})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !strings.Contains(string(data), `"hits"`) {
		t.Errorf("body = %s", data)
	}
	after := testutil.ToFloat64(metrics.EngineRequestsTotal.WithLabelValues("search", "200"))
	if after-before != 1 {
		t.Errorf("search 200 counter delta = %v", after-before)
	}
}

func TestSearch_RequiresIndex(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	if _, err := c.Search(context.Background(), "", map[string]any{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearch_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"}}`))
	})

	_, err := c.Search(context.Background(), "missing", map[string]any{})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.Status != http.StatusNotFound || !strings.Contains(httpErr.Body, "index_not_found_exception") {
		t.Errorf("error = %+v", httpErr)
	}
}

func TestSearch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := NewClient(&Config{URL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Search(context.Background(), "posts", map[string]any{}); !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
}

func TestBulk_SendsNDJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/_bulk" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("refresh"); got != "true" {
			t.Errorf("refresh = %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
		if len(lines) != 2 {
			t.Errorf("lines = %d: %s", len(lines), raw)
		}
		_, _ = w.Write([]byte(`{"errors":false,"items":[]}`))
	})

	req := bulk.NewRequest(true).Delete("posts", "1", "").Delete("posts", "2", "u1")
	data, err := c.Bulk(context.Background(), req)
	if err != nil {
		t.Fatalf("Bulk: %v", err)
	}
	if string(data) != `{"errors":false,"items":[]}` {
		t.Errorf("body = %s", data)
	}
}

func TestSearch_RejectsNonElasticsearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[]}}`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(&Config{URL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Search(context.Background(), "posts", map[string]any{}); !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
}

func TestBulk_InvalidOp(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	if _, err := c.Bulk(context.Background(), bulk.NewRequest(false).Delete("posts", "", "")); err == nil {
		t.Fatal("expected encode error")
	}
}

func TestPing(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"unauthorized", http.StatusUnauthorized, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodHead || r.URL.Path != "/" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tt.status)
			})
			if err := c.Ping(context.Background()); (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
