package cli

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/querykit/pkg/hydration"
)

const joinedHits = `{"took":2,"hits":{"total":{"value":3,"relation":"eq"},"hits":[
	{"_index":"app_posts","_id":"1","_score":2.5},
	{"_index":"app_users","_id":"7","_score":1.5},
	{"_index":"app_posts","_id":"9","_score":0.5}
]}}`

func newSearchEngine(t *testing.T, wantPath string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != wantPath {
			t.Errorf("path = %s, want %s", r.URL.Path, wantPath)
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		_, _ = w.Write([]byte(joinedHits))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeRecords(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSearch_PrintBodySoftDelete(t *testing.T) {
	cfg := writeConfig(t, "http://localhost:9200", "")

	tests := []struct {
		name    string
		trashed string
		want    string
		absent  string
	}{
		{"exclude", "exclude", `"deleted":{"value":0}`, ""},
		{"only", "only", `"deleted":{"value":1}`, ""},
		{"with", "with", `"query_string"`, `"deleted"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, nil, "--config", cfg, "search", "posts",
				"-q", "title:go", "--trashed", tt.trashed, "--size", "5", "--print-body")
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			var body map[string]any
			if err := json.Unmarshal([]byte(out), &body); err != nil {
				t.Fatalf("decode %q: %v", out, err)
			}
			if body["size"] != float64(5) {
				t.Errorf("size = %v", body["size"])
			}
			compact, _ := json.Marshal(body)
			if !strings.Contains(string(compact), tt.want) {
				t.Errorf("body %s missing %s", compact, tt.want)
			}
			if tt.absent != "" && strings.Contains(string(compact), tt.absent) {
				t.Errorf("body %s should not contain %s", compact, tt.absent)
			}
		})
	}
}

func TestSearch_FilterFile(t *testing.T) {
	cfg := writeConfig(t, "http://localhost:9200", "")
	filter := filepath.Join(t.TempDir(), "filter.json")
	if err := os.WriteFile(filter, []byte(`{"term":{"status":"published"}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, nil, "--config", cfg, "search", "posts", "--filter-file", filter, "--print-body")
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, `"status": "published"`) {
		t.Errorf("out = %s", out)
	}
}

func TestSearch_JoinWithHydration(t *testing.T) {
	srv := newSearchEngine(t, "/app_posts,app_users/_search")
	cfg := writeConfig(t, srv.URL, "hydration:\n  mode: log\n")
	records := writeRecords(t, "posts/1", "7")

	out, err := execute(t, nil, "--config", cfg, "--format", "json",
		"search", "posts", "users", "--records", records)
	if err != nil {
		t.Fatalf("err = %v", err)
	}

	var res SearchOutput
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if res.Total != 3 || len(res.Hits) != 3 {
		t.Fatalf("res = %+v", res)
	}
	if res.Hits[0].Model != "posts" || res.Hits[1].Model != "users" {
		t.Errorf("models = %q, %q", res.Hits[0].Model, res.Hits[1].Model)
	}
	if res.Resolved != 2 {
		t.Errorf("resolved = %d", res.Resolved)
	}
	want := hydration.HitRef{Index: "app_posts", ID: "9"}
	if len(res.Missing) != 1 || res.Missing[0] != want {
		t.Errorf("missing = %v", res.Missing)
	}
}

func TestSearch_StrictMismatchFails(t *testing.T) {
	srv := newSearchEngine(t, "/app_posts,app_users/_search")
	cfg := writeConfig(t, srv.URL, "")
	records := writeRecords(t, "posts/1")

	_, err := execute(t, nil, "--config", cfg, "search", "posts", "users", "--records", records)
	if !errors.Is(err, hydration.ErrHydrationMismatch) {
		t.Fatalf("expected ErrHydrationMismatch, got %v", err)
	}

	out, err := execute(t, nil, "--config", cfg, "search", "posts", "users", "--records", records, "--mode", "ignore")
	if err != nil {
		t.Fatalf("ignore mode: %v", err)
	}
	if !strings.HasPrefix(out, "total: 3, page: 3\n") || !strings.Contains(out, "users\tapp_users\t7\t1.5000") {
		t.Errorf("out = %q", out)
	}
}

func TestSearch_KNNFromText(t *testing.T) {
	var embedded bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		embedded = true
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"m","data":[{"object":"embedding","index":0,"embedding":[0.5,0.25]}],"usage":{"prompt_tokens":1,"total_tokens":1}}`))
	}))
	defer srv.Close()
	cfg := writeConfig(t, "http://localhost:9200", "embedding:\n  api_key: test-key\n  base_url: "+srv.URL+"\n")

	out, err := execute(t, nil, "--config", cfg, "search", "posts",
		"--text", "golang", "--knn-field", "embedding", "--k", "3", "--print-body")
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if !embedded {
		t.Fatal("expected embedding request")
	}
	var body struct {
		KNN struct {
			Field       string    `json:"field"`
			QueryVector []float64 `json:"query_vector"`
			K           int       `json:"k"`
		} `json:"knn"`
	}
	if err := json.Unmarshal([]byte(out), &body); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if body.KNN.Field != "embedding" || body.KNN.K != 3 || len(body.KNN.QueryVector) != 2 {
		t.Errorf("knn = %+v", body.KNN)
	}
}

func TestSearch_FlagErrors(t *testing.T) {
	cfg := writeConfig(t, "http://localhost:9200", "")

	tests := []struct {
		name string
		args []string
	}{
		{"text without field", []string{"search", "posts", "--text", "go"}},
		{"bad trashed", []string{"search", "posts", "--trashed", "sometimes", "--print-body"}},
		{"bad mode", []string{"search", "posts", "--mode", "loud", "--print-body"}},
		{"duplicate index", []string{"search", "posts", "posts"}},
		{"no index", []string{"search"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, nil, append([]string{"--config", cfg}, tt.args...)...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
