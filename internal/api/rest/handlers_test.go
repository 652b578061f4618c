package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/birka/schema/internal/schedule"
	"github.com/birka/schema/internal/service"
	"github.com/birka/schema/internal/store"
	"github.com/sirupsen/logrus/hooks/test"
)

type fakeSchedule struct {
	out *service.Schedule
	err error
}

func (f fakeSchedule) Build(ctx context.Context) (*service.Schedule, error) {
	return f.out, f.err
}

type panicSchedule struct{}

func (panicSchedule) Build(ctx context.Context) (*service.Schedule, error) {
	panic("boom")
}

type recordingPublisher struct {
	changes []store.Change
}

func (p *recordingPublisher) PublishAnnotationChange(ctx context.Context, c store.Change) error {
	p.changes = append(p.changes, c)
	return nil
}

type fakeCache struct{ err error }

func (f fakeCache) HealthCheck(ctx context.Context) error { return f.err }

type fixture struct {
	router    http.Handler
	store     *store.FileAnnotationStore
	published *recordingPublisher
}

func newFixture(t *testing.T, sched ScheduleBuilder, opts ...HandlerOption) *fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()

	s := store.NewFileAnnotationStore(filepath.Join(t.TempDir(), "priorities.json"), logger)
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	pub := &recordingPublisher{}
	opts = append([]HandlerOption{WithPublisher(pub), WithVersion("schema", "test")}, opts...)
	h := NewHandler(sched, s, logger, opts...)

	static := t.TempDir()
	os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>Birka</h1>"), 0o644)

	return &fixture{
		router:    NewRouter(Config{StaticDir: static}, h, nil, logger),
		store:     s,
		published: pub,
	}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestGetSchedule(t *testing.T) {
	sched := &service.Schedule{
		GeneratedAt: "2024-08-20T10:00:00.000Z",
		Days: []schedule.Day{{
			Date:    "2024-08-21",
			Matches: []schedule.Match{{ID: "100", Time: "18:00", Competition: "SHL", Channel: "TV4", Tags: []string{}}},
		}},
	}
	f := newFixture(t, fakeSchedule{out: sched})

	rec := f.do("GET", "/schedule", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s", ct)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}

	var got service.Schedule
	json.Unmarshal(rec.Body.Bytes(), &got)
	if !reflect.DeepEqual(&got, sched) {
		t.Errorf("body = %+v", got)
	}
}

func TestGetScheduleFailure(t *testing.T) {
	f := newFixture(t, fakeSchedule{err: errors.New("disk gone")})

	rec := f.do("GET", "/schedule", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decode(t, rec); body["error"] == nil {
		t.Errorf("expected error envelope, got %v", body)
	}
}

func TestPanicRecovered(t *testing.T) {
	f := newFixture(t, panicSchedule{})

	rec := f.do("GET", "/schedule", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decode(t, rec); body["error"] == nil {
		t.Errorf("expected error envelope, got %v", body)
	}
}

func TestTogglePriority(t *testing.T) {
	f := newFixture(t, fakeSchedule{})

	rec := f.do("POST", "/priorities/toggle", `{"id":"100"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	body := decode(t, rec)
	if body["ok"] != true || !reflect.DeepEqual(body["eventIds"], []interface{}{"100"}) {
		t.Errorf("body = %v", body)
	}

	// Numeric ids are accepted as their string form
	rec = f.do("POST", "/priorities/toggle", `{"id":100}`)
	body = decode(t, rec)
	if body["ok"] != true || !reflect.DeepEqual(body["eventIds"], []interface{}{}) {
		t.Errorf("second toggle body = %v", body)
	}

	if len(f.published.changes) != 2 {
		t.Fatalf("published %d changes", len(f.published.changes))
	}
	if c := f.published.changes[0]; c.Kind != store.ChangePriority || c.ID != "100" || !c.Priority {
		t.Errorf("first change = %+v", c)
	}
	if f.published.changes[1].Priority {
		t.Error("second change should clear priority")
	}
}

func TestToggleTag(t *testing.T) {
	f := newFixture(t, fakeSchedule{})

	f.do("POST", "/tags/toggle", `{"id":"100","tag":"BB1"}`)
	rec := f.do("POST", "/tags/toggle", `{"id":"100","tag":"BB2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body["ok"] != true || !reflect.DeepEqual(body["tagsForId"], []interface{}{"BB1", "BB2"}) {
		t.Errorf("body = %v", body)
	}

	rec = f.do("GET", "/annotations", "")
	ann := decode(t, rec)
	tags := ann["tags"].(map[string]interface{})
	if !reflect.DeepEqual(tags["100"], []interface{}{"BB1", "BB2"}) {
		t.Errorf("annotations = %v", ann)
	}

	last := f.published.changes[len(f.published.changes)-1]
	if last.Kind != store.ChangeTag || last.Tag != "BB2" || len(last.Tags) != 2 {
		t.Errorf("last change = %+v", last)
	}
}

func TestToggleRejected(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"priority without id", "/priorities/toggle", `{}`},
		{"priority empty id", "/priorities/toggle", `{"id":""}`},
		{"priority not json", "/priorities/toggle", `id=100`},
		{"priority array body", "/priorities/toggle", `["100"]`},
		{"tag without tag", "/tags/toggle", `{"id":"100"}`},
		{"tag without id", "/tags/toggle", `{"tag":"BB1"}`},
		{"tag empty body", "/tags/toggle", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, fakeSchedule{})
			rec := f.do("POST", tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d", rec.Code)
			}
			if body := decode(t, rec); body["ok"] != false {
				t.Errorf("body = %v", body)
			}
			if _, err := os.Stat(f.store.Path()); !os.IsNotExist(err) {
				t.Error("rejected toggle wrote the annotation file")
			}
			if len(f.published.changes) != 0 {
				t.Error("rejected toggle was published")
			}
		})
	}
}

func TestPreflight(t *testing.T) {
	f := newFixture(t, fakeSchedule{})
	rec := f.do("OPTIONS", "/tags/toggle", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("missing allow-methods")
	}
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t, fakeSchedule{}, WithCache(fakeCache{}))
	body := decode(t, f.do("GET", "/health", ""))
	if body["status"] != "healthy" || body["cache"] != "ok" || body["version"] != "test" {
		t.Errorf("body = %v", body)
	}

	f = newFixture(t, fakeSchedule{}, WithCache(fakeCache{err: errors.New("refused")}))
	body = decode(t, f.do("GET", "/health", ""))
	if body["status"] != "degraded" || body["cache"] != "unavailable" {
		t.Errorf("degraded body = %v", body)
	}
}

func TestStaticAndMetrics(t *testing.T) {
	f := newFixture(t, fakeSchedule{})

	rec := f.do("GET", "/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Birka") {
		t.Errorf("GET / = %d %q", rec.Code, rec.Body)
	}

	rec = f.do("GET", "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "birka_") {
		t.Errorf("GET /metrics = %d", rec.Code)
	}
}

func TestEmbeddedClient(t *testing.T) {
	rec := httptest.NewRecorder()
	staticHandler("").ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/schedule") {
		t.Errorf("embedded client = %d", rec.Code)
	}
}
