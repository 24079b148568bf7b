package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lysyi3m/argot/app/database"
	"github.com/lysyi3m/argot/app/extensions"
	"github.com/lysyi3m/argot/app/feed"
	"github.com/lysyi3m/argot/app/metrics"
	"github.com/lysyi3m/argot/app/ping"
	"github.com/lysyi3m/argot/app/tasks"
)

const testAPIKey = "secret"

type fakeScheduler struct {
	refreshed []string
}

func (f *fakeScheduler) Start() {}
func (f *fakeScheduler) Stop()  {}

func (f *fakeScheduler) EnqueueTask(task tasks.TaskInterface) error {
	return nil
}

func (f *fakeScheduler) RefreshResource(resourceConfig *feed.Config) ([]tasks.TaskInterface, error) {
	f.refreshed = append(f.refreshed, resourceConfig.Name)
	return []tasks.TaskInterface{tasks.NewSyncResourceConfigTask(resourceConfig, nil)}, nil
}

type testEnv struct {
	server    http.Handler
	resources *database.ResourceStore
	pings     *database.PingStore
	scheduler *fakeScheduler
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewConnection(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatal(err)
	}

	feedsDir := t.TempDir()
	for name, url := range map[string]string{"news": "https://example.com/news.xml", "pending": "https://example.com/pending.xml"} {
		config := "url: \"" + url + "\"\nsettings:\n  enabled: true\n"
		if err := os.WriteFile(filepath.Join(feedsDir, name+".yml"), []byte(config), 0644); err != nil {
			t.Fatal(err)
		}
	}
	configCache := feed.NewConfigCache(feedsDir, extensions.Default())
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	resources := database.NewResourceStore(db)
	pings := database.NewPingStore(db)
	for _, name := range []string{"news", "pending"} {
		if err := resources.UpsertResource(name, "https://example.com/"+name+".xml"); err != nil {
			t.Fatal(err)
		}
	}
	err = resources.UpdateDocument("news", database.Document{
		Format:    "atom",
		Title:     "News",
		Body:      []byte(`<feed xmlns="http://www.w3.org/2005/Atom"><title>News</title></feed>`),
		ItemCount: 4,
	}, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	reg := prometheus.NewRegistry()
	scheduler := &fakeScheduler{}
	handler := NewHandler(configCache, resources, pings, scheduler, metrics.NewWithRegistry(reg))

	return &testEnv{
		server:    NewServer(handler, testAPIKey, reg),
		resources: resources,
		pings:     pings,
		scheduler: scheduler,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

func TestGetFeed(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/feeds/news", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/atom+xml; charset=utf-8" {
		t.Errorf("Expected Atom content type, got '%s'", ct)
	}
	if w.Header().Get("X-Feed-Items") != "4" {
		t.Errorf("Expected X-Feed-Items 4, got '%s'", w.Header().Get("X-Feed-Items"))
	}
	if w.Header().Get("X-Feed-Name") != "news" {
		t.Errorf("Expected X-Feed-Name 'news', got '%s'", w.Header().Get("X-Feed-Name"))
	}
	if !strings.Contains(w.Body.String(), "<title>News</title>") {
		t.Errorf("Expected stored document, got: %s", w.Body.String())
	}

	if w := env.do(httptest.NewRequest(http.MethodGet, "/feeds/unknown", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown resource, got %d", w.Code)
	}
	if w := env.do(httptest.NewRequest(http.MethodGet, "/feeds/pending", nil)); w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 for a resource without document, got %d", w.Code)
	}

	w = env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), `argot_documents_served_total{format="atom",resource="news"} 1`) {
		t.Errorf("Expected served document metric, got: %s", w.Body.String())
	}
}

func postTrackback(env *testEnv, name string, form url.Values) (*httptest.ResponseRecorder, ping.Response) {
	req := httptest.NewRequest(http.MethodPost, "/feeds/"+name+"/trackback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := env.do(req)
	response, _ := ping.DecodeResponse(strings.NewReader(w.Body.String()))
	return w, response
}

func TestPostTrackback(t *testing.T) {
	env := setupTestEnv(t)

	w, response := postTrackback(env, "news", url.Values{
		"url":       {"https://blog.example.com/reply"},
		"title":     {"Reply"},
		"excerpt":   {"Agreed"},
		"blog_name": {"Example"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/xml") {
		t.Errorf("Expected XML content type, got '%s'", w.Header().Get("Content-Type"))
	}
	if response.Error {
		t.Errorf("Expected accepted ping, got error '%s'", response.Message)
	}

	pings, err := env.pings.GetPings("news", database.PingReceived, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pings) != 1 || pings[0].SourceURL != "https://blog.example.com/reply" || pings[0].BlogName != "Example" {
		t.Errorf("Expected stored trackback, got %+v", pings)
	}

	_, response = postTrackback(env, "news", url.Values{"title": {"No URL"}})
	if !response.Error {
		t.Error("Expected error response for a ping without url")
	}

	_, response = postTrackback(env, "unknown", url.Values{"url": {"https://blog.example.com/reply"}})
	if !response.Error || response.Message != "unknown resource" {
		t.Errorf("Expected unknown resource error, got %+v", response)
	}

	count, _ := env.pings.GetPingCount("news", database.PingReceived)
	if count != 1 {
		t.Errorf("Expected rejected pings not to be stored, got %d", count)
	}
}

func TestGetHealth(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var health map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health["resources"] != float64(2) {
		t.Errorf("Expected 2 resources, got %v", health["resources"])
	}
	if health["loaded_configurations"] != float64(2) {
		t.Errorf("Expected 2 loaded configurations, got %v", health["loaded_configurations"])
	}
}

func TestAPIAuthentication(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name   string
		header string
		value  string
		status int
	}{
		{"missing key", "", "", http.StatusUnauthorized},
		{"wrong key", "X-API-Key", "nope", http.StatusUnauthorized},
		{"api key header", "X-API-Key", testAPIKey, http.StatusOK},
		{"bearer token", "Authorization", "Bearer " + testAPIKey, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/feeds", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			if w := env.do(req); w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestAPIGetFeedDetails(t *testing.T) {
	env := setupTestEnv(t)
	postTrackback(env, "news", url.Values{"url": {"https://blog.example.com/reply"}, "title": {"Reply"}})

	req := httptest.NewRequest(http.MethodGet, "/api/feeds/news/details", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	w := env.do(req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var details struct {
		Format string `json:"format"`
		Items  struct {
			Visible int `json:"visible"`
		} `json:"items"`
		Pings struct {
			Received int `json:"received"`
			Sent     int `json:"sent"`
			Recent   []struct {
				URL   string `json:"url"`
				Title string `json:"title"`
			} `json:"recent"`
		} `json:"pings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &details); err != nil {
		t.Fatal(err)
	}
	if details.Format != "atom" || details.Items.Visible != 4 {
		t.Errorf("Expected atom document with 4 items, got %s/%d", details.Format, details.Items.Visible)
	}
	if details.Pings.Received != 1 || details.Pings.Sent != 0 {
		t.Errorf("Expected 1 received and 0 sent pings, got %d/%d", details.Pings.Received, details.Pings.Sent)
	}
	if len(details.Pings.Recent) != 1 || details.Pings.Recent[0].Title != "Reply" {
		t.Errorf("Expected recent trackback, got %+v", details.Pings.Recent)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/feeds/unknown/details", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	if w := env.do(req); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestAPIReloadFeed(t *testing.T) {
	env := setupTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/feeds/news/reload", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	w := env.do(req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(env.scheduler.refreshed) != 1 || env.scheduler.refreshed[0] != "news" {
		t.Errorf("Expected refresh of 'news', got %v", env.scheduler.refreshed)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/feeds/missing/reload", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	if w := env.do(req); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for missing configuration, got %d", w.Code)
	}
}
