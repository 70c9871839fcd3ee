package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"

	"github.com/nerrad567/devicedash/internal/audit"
	"github.com/nerrad567/devicedash/internal/feed"
	"github.com/nerrad567/devicedash/internal/gateway"
	"github.com/nerrad567/devicedash/internal/i18n"
	"github.com/nerrad567/devicedash/internal/infrastructure/config"
	"github.com/nerrad567/devicedash/internal/infrastructure/database"
	"github.com/nerrad567/devicedash/internal/infrastructure/logging"
	"github.com/nerrad567/devicedash/internal/notify"
	"github.com/nerrad567/devicedash/internal/routes"
	"github.com/nerrad567/devicedash/migrations"
)

// backendCall is one request received by the fake backend.
type backendCall struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
}

// fakeBackend records requests and answers them with respond.
type fakeBackend struct {
	mu      sync.Mutex
	calls   []backendCall
	respond http.HandlerFunc
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body) //nolint:errcheck // test fake
	b.mu.Lock()
	b.calls = append(b.calls, backendCall{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Body:   string(body),
	})
	respond := b.respond
	b.mu.Unlock()

	if respond == nil {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, "[]") //nolint:errcheck // test fake
		return
	}
	respond(w, r)
}

func (b *fakeBackend) Calls() []backendCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]backendCall(nil), b.calls...)
}

type fixture struct {
	srv     *Server
	handler http.Handler
	backend *fakeBackend
	center  *notify.Center
	audit   *audit.SQLiteRepository
	feed    *feed.Service
}

// newFixture wires a Server against a fake backend, an in-memory database,
// and a real notification center.
func newFixture(t *testing.T, respond http.HandlerFunc) *fixture {
	t.Helper()
	ctx := context.Background()

	backend := &fakeBackend{respond: respond}
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)

	db, err := database.Open(ctx, database.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	log := logging.Discard()
	center := notify.NewCenter()

	gw, err := gateway.New(ts.URL, gateway.WithNotifier(center), gateway.WithLogger(log))
	if err != nil {
		t.Fatalf("gateway.New: %v", err)
	}

	table, err := routes.New(routes.DefaultConfig(""))
	if err != nil {
		t.Fatalf("routes.New: %v", err)
	}

	repo := audit.NewSQLiteRepository(db.DB)
	hub := NewHub(config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}, log)
	center.SetPublisher(hub)
	svc := feed.New(feed.NewSQLiteStore(db.DB, feed.DefaultRetain), feed.WithPublisher(hub))

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		WS:          config.WebSocketConfig{Path: "/ws", MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10},
		Logger:      log,
		Gateway:     gw,
		Routes:      table,
		Notifier:    center,
		Audit:       repo,
		Feed:        svc,
		DB:          db.DB,
		Health:      map[string]HealthChecker{"database": db},
		ExternalHub: hub,
		Version:     "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	return &fixture{
		srv:     srv,
		handler: srv.Handler(),
		backend: backend,
		center:  center,
		audit:   repo,
		feed:    svc,
	}
}

func (f *fixture) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func (f *fixture) toasts(kind notify.Kind) []notify.Notification {
	var out []notify.Notification
	for _, n := range f.center.Active() {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func (f *fixture) auditEntries(t *testing.T) []audit.Entry {
	t.Helper()
	result, err := f.audit.List(context.Background(), audit.Filter{})
	if err != nil {
		t.Fatalf("audit List: %v", err)
	}
	return result.Entries
}

func respondJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body) //nolint:errcheck // test fake
	}
}

// ─── Navigation ────────────────────────────────────────────────────

func TestRedirects(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"layout", http.MethodGet, "/"},
		{"unknown page", http.MethodGet, "/settings"},
		{"nested unknown page", http.MethodGet, "/a/b/c"},
		{"trailing slash", http.MethodGet, "/devices/"},
		{"form action path", http.MethodGet, "/devices/7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, nil)
			if w.Code != http.StatusFound {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
			}
			if got := w.Header().Get("Location"); got != routes.PathDevices {
				t.Errorf("Location = %q, want %q", got, routes.PathDevices)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodPut, "/devices/7", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestPageTitles(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		target string
		want   string
	}{
		{"/mqtt", "<title>设备管理平台 - MQTT 控制</title>"},
		{"/devices", "<title>设备管理平台 - 设备管理</title>"},
		{"/dashboard", "<title>设备管理平台 - 仪表盘</title>"},
		{"/mqtt?lang=en", "<title>Device Management Platform - MQTT Control</title>"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := f.do(t, http.MethodGet, tt.target, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("body does not contain %q", tt.want)
			}
		})
	}
}

func TestLanguageQuerySetsCookie(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/devices?lang=en", nil)

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == i18n.LangCookieName {
			found = true
			if c.Value != "en" {
				t.Errorf("cookie value = %q, want en", c.Value)
			}
		}
	}
	if !found {
		t.Error("language cookie not set")
	}
}

func TestNavMarksActiveRoute(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/mqtt", nil)
	body := w.Body.String()
	if !strings.Contains(body, `<a href="/mqtt" class="active" aria-current="page">MQTT 控制</a>`) {
		t.Error("MQTT nav entry not marked active")
	}
	if !strings.Contains(body, `<a href="/devices">设备管理</a>`) {
		t.Error("devices nav entry missing")
	}
}

func TestPagesLoadLazily(t *testing.T) {
	f := newFixture(t, nil)

	if f.srv.pages.Loaded(routes.PathMQTT) {
		t.Fatal("MQTT page loaded before first visit")
	}
	f.do(t, http.MethodGet, "/mqtt", nil)
	if !f.srv.pages.Loaded(routes.PathMQTT) {
		t.Error("MQTT page not loaded after first visit")
	}
	if f.srv.pages.Loaded(routes.PathDashboard) {
		t.Error("dashboard page loaded without a visit")
	}
}

// ─── Device page ───────────────────────────────────────────────────

func TestDevicesPageListsDevices(t *testing.T) {
	f := newFixture(t, respondJSON(http.StatusOK,
		`[{"id":1,"deviceName":"Hall Lamp","deviceType":"light","status":"online"}]`))

	w := f.do(t, http.MethodGet, "/devices", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Hall Lamp", "light", `action="/devices/1/command"`, `action="/devices/1/delete"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body does not contain %q", want)
		}
	}

	calls := f.backend.Calls()
	if len(calls) != 1 || calls[0].Method != http.MethodGet || calls[0].Path != "/devices/" {
		t.Errorf("backend calls = %+v, want one GET /devices/", calls)
	}
}

func TestDevicesPageBackendFailure(t *testing.T) {
	f := newFixture(t, respondJSON(http.StatusInternalServerError, `{"error":"database unavailable"}`))

	w := f.do(t, http.MethodGet, "/devices", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	errs := f.toasts(notify.KindError)
	if len(errs) != 1 {
		t.Fatalf("error toasts = %d, want 1", len(errs))
	}
	if errs[0].Message != "database unavailable" {
		t.Errorf("toast message = %q, want %q", errs[0].Message, "database unavailable")
	}
	if !strings.Contains(w.Body.String(), "database unavailable") {
		t.Error("active toast not rendered into the page")
	}
}

func TestDevicesPageEditForm(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/devices/3" {
			io.WriteString(w, `{"id":3,"deviceName":"Fan","deviceType":"fan","status":"offline"}`) //nolint:errcheck // test fake
			return
		}
		io.WriteString(w, "[]") //nolint:errcheck // test fake
	})

	w := f.do(t, http.MethodGet, "/devices?edit=3", nil)
	body := w.Body.String()
	if !strings.Contains(body, `action="/devices/3"`) {
		t.Error("edit form not rendered")
	}
	if !strings.Contains(body, `value="Fan"`) {
		t.Error("edit form not prefilled")
	}
}

// ─── Form actions ──────────────────────────────────────────────────

func TestRegisterDevice(t *testing.T) {
	f := newFixture(t, respondJSON(http.StatusOK,
		`{"id":42,"deviceName":"Hall Lamp","deviceType":"light","status":"offline"}`))

	w := f.do(t, http.MethodPost, "/devices", url.Values{
		"deviceName": {" Hall Lamp "},
		"deviceType": {"light"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if got := w.Header().Get("Location"); got != routes.PathDevices {
		t.Errorf("Location = %q, want /devices", got)
	}

	calls := f.backend.Calls()
	if len(calls) != 1 {
		t.Fatalf("backend calls = %d, want 1", len(calls))
	}
	if calls[0].Method != http.MethodPost || calls[0].Path != "/devices/register" {
		t.Errorf("call = %s %s, want POST /devices/register", calls[0].Method, calls[0].Path)
	}
	var sent map[string]any
	if err := json.Unmarshal([]byte(calls[0].Body), &sent); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	want := map[string]any{"deviceName": "Hall Lamp", "deviceType": "light", "status": "offline"}
	if diff := cmp.Diff(want, sent); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}

	entries := f.auditEntries(t)
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	if entries[0].Action != audit.ActionRegister || entries[0].EntityID != "42" || entries[0].Outcome != audit.OutcomeOK {
		t.Errorf("audit entry = %+v", entries[0])
	}
	if len(f.toasts(notify.KindSuccess)) != 1 {
		t.Error("no success toast")
	}
}

func TestRegisterDeviceRejectsIncompleteForm(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodPost, "/devices", url.Values{"deviceType": {"light"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if calls := f.backend.Calls(); len(calls) != 0 {
		t.Errorf("backend called %d times for an invalid form", len(calls))
	}
	warnings := f.toasts(notify.KindWarning)
	if len(warnings) != 1 || !strings.Contains(warnings[0].Message, "deviceName") {
		t.Errorf("warning toasts = %+v, want one naming deviceName", warnings)
	}
}

func TestUpdateDevice(t *testing.T) {
	f := newFixture(t, respondJSON(http.StatusOK, `{}`))

	w := f.do(t, http.MethodPost, "/devices/5", url.Values{
		"deviceName": {"Porch"},
		"deviceType": {"light"},
		"status":     {"online"},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}

	calls := f.backend.Calls()
	if len(calls) != 1 || calls[0].Method != http.MethodPut || calls[0].Path != "/devices/5" {
		t.Fatalf("backend calls = %+v, want one PUT /devices/5", calls)
	}
	if !strings.Contains(calls[0].Body, `"id":5`) {
		t.Errorf("body = %s, want numeric id", calls[0].Body)
	}
}

func TestDeleteDevice(t *testing.T) {
	f := newFixture(t, respondJSON(http.StatusOK, `{}`))

	w := f.do(t, http.MethodPost, "/devices/9/delete", url.Values{})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}

	calls := f.backend.Calls()
	if len(calls) != 1 || calls[0].Method != http.MethodDelete || calls[0].Path != "/devices/9" {
		t.Fatalf("backend calls = %+v, want one DELETE /devices/9", calls)
	}
	entries := f.auditEntries(t)
	if len(entries) != 1 || entries[0].Action != audit.ActionDelete || entries[0].EntityID != "9" {
		t.Errorf("audit entries = %+v", entries)
	}
}

func TestSendCommand(t *testing.T) {
	f := newFixture(t, respondJSON(http.StatusOK, `{}`))

	f.do(t, http.MethodPost, "/devices/5/command", url.Values{"command": {"on"}})

	calls := f.backend.Calls()
	if len(calls) != 1 || calls[0].Path != "/devices/5/command" {
		t.Fatalf("backend calls = %+v", calls)
	}
	if calls[0].Body != `{"command":"ON"}` {
		t.Errorf("body = %s, want {\"command\":\"ON\"}", calls[0].Body)
	}
}

func TestSendCommandFailure(t *testing.T) {
	f := newFixture(t, respondJSON(http.StatusNotFound, `{"message":"device not found"}`))

	w := f.do(t, http.MethodPost, "/devices/5/command", url.Values{"command": {"OFF"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}

	errs := f.toasts(notify.KindError)
	if len(errs) != 1 || errs[0].Message != "device not found" {
		t.Errorf("error toasts = %+v, want one 'device not found'", errs)
	}
	if n := len(f.toasts(notify.KindSuccess)); n != 0 {
		t.Errorf("success toasts = %d, want 0", n)
	}

	entries := f.auditEntries(t)
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Outcome != audit.OutcomeFailed {
		t.Errorf("Outcome = %q, want failed", e.Outcome)
	}
	if e.Details["error"] != "device not found" {
		t.Errorf("Details[error] = %v", e.Details["error"])
	}
	if e.Details["status"] != float64(http.StatusNotFound) {
		t.Errorf("Details[status] = %v, want 404", e.Details["status"])
	}
}

func TestSendCommandRejectsUnknownCommand(t *testing.T) {
	f := newFixture(t, nil)

	f.do(t, http.MethodPost, "/devices/5/command", url.Values{"command": {"TOGGLE"}})
	if calls := f.backend.Calls(); len(calls) != 0 {
		t.Errorf("backend called %d times", len(calls))
	}
	if len(f.toasts(notify.KindWarning)) != 1 {
		t.Error("no warning toast")
	}
}

func TestPublishMessage(t *testing.T) {
	f := newFixture(t, respondJSON(http.StatusOK, `"ok"`))

	w := f.do(t, http.MethodPost, "/mqtt/publish", url.Values{
		"topic":   {"device/command/5"},
		"message": {`{"command":"ON"}`},
	})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if got := w.Header().Get("Location"); got != routes.PathMQTT {
		t.Errorf("Location = %q, want /mqtt", got)
	}

	calls := f.backend.Calls()
	if len(calls) != 1 {
		t.Fatalf("backend calls = %d, want 1", len(calls))
	}
	c := calls[0]
	if c.Method != http.MethodPost || c.Path != "/mqtt/publish" || c.Body != "" {
		t.Errorf("call = %s %s body %q", c.Method, c.Path, c.Body)
	}
	if c.Query.Get("topic") != "device/command/5" || c.Query.Get("message") != `{"command":"ON"}` {
		t.Errorf("query = %v", c.Query)
	}

	entries := f.auditEntries(t)
	if len(entries) != 1 || entries[0].EntityType != audit.EntityTopic || entries[0].EntityID != "device/command/5" {
		t.Errorf("audit entries = %+v", entries)
	}
}

func TestPublishMessageRejectsWildcardTopic(t *testing.T) {
	f := newFixture(t, nil)

	f.do(t, http.MethodPost, "/mqtt/publish", url.Values{"topic": {"device/#"}, "message": {"x"}})
	if calls := f.backend.Calls(); len(calls) != 0 {
		t.Errorf("backend called %d times", len(calls))
	}
	if len(f.toasts(notify.KindWarning)) != 1 {
		t.Error("no warning toast")
	}
}

// ─── Dashboard ─────────────────────────────────────────────────────

func TestDashboard(t *testing.T) {
	f := newFixture(t, respondJSON(http.StatusOK,
		`[{"id":1,"deviceName":"A","deviceType":"light","status":"online"},
		  {"id":2,"deviceName":"B","deviceType":"fan","status":"offline"},
		  {"id":3,"deviceName":"C","deviceType":"fan","status":"ONLINE"}]`))

	if err := f.feed.Handle("device/status/7", []byte(`{"status":"online"}`)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if err := f.audit.Create(context.Background(), &audit.Entry{Action: audit.ActionDelete, EntityType: audit.EntityDevice, EntityID: "99"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	w := f.do(t, http.MethodGet, "/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`<div class="value">3</div>`,
		`<div class="value online">2</div>`,
		`<div class="value offline">1</div>`,
		"device/status/7",
		"device 99",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body does not contain %q", want)
		}
	}
}

func TestDashboardSurvivesBackendFailure(t *testing.T) {
	f := newFixture(t, func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler) // drops the connection
	})

	w := f.do(t, http.MethodGet, "/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `<div class="value">-</div>`) {
		t.Error("device count not shown as unavailable")
	}
	if len(f.toasts(notify.KindError)) != 1 {
		t.Error("want exactly one error toast")
	}
}

// ─── JSON endpoints ────────────────────────────────────────────────

type failingChecker struct{}

func (failingChecker) HealthCheck(context.Context) error { return errors.New("broker unreachable") }

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("body = %v", body)
	}
}

func TestHealthDegraded(t *testing.T) {
	f := newFixture(t, nil)
	f.srv.health["mqtt"] = failingChecker{}

	w := f.do(t, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}

	var body struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	want := map[string]string{"database": "ok", "mqtt": "broker unreachable"}
	if diff := cmp.Diff(want, body.Components); diff != "" {
		t.Errorf("components mismatch (-want +got):\n%s", diff)
	}
}

func TestListMessages(t *testing.T) {
	f := newFixture(t, nil)
	for _, topic := range []string{"test/topic", "device/report/1", "device/status/1"} {
		if err := f.feed.Handle(topic, []byte(`{"temp":21}`)); err != nil {
			t.Fatalf("Handle(%s): %v", topic, err)
		}
	}

	tests := []struct {
		target string
		want   []string
	}{
		{"/api/messages", []string{"device/status/1", "device/report/1", "test/topic"}},
		{"/api/messages?limit=1", []string{"device/status/1"}},
		{"/api/messages?topic=device/%2B/1", []string{"device/status/1", "device/report/1"}},
		{"/api/messages?topic=test/%23", []string{"test/topic"}},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := f.do(t, http.MethodGet, tt.target, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			var body struct {
				Messages []feed.Message `json:"messages"`
			}
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decoding: %v", err)
			}
			var got []string
			for _, m := range body.Messages {
				got = append(got, m.Topic)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("topics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListMessagesBadParams(t *testing.T) {
	f := newFixture(t, nil)

	for _, target := range []string{"/api/messages?limit=0", "/api/messages?limit=x", "/api/messages?topic=a/%23/b"} {
		w := f.do(t, http.MethodGet, target, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, w.Code)
		}
	}
}

func TestListStatuses(t *testing.T) {
	f := newFixture(t, nil)
	if err := f.feed.Handle("device/status/4", []byte(`{"status":"offline"}`)); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	w := f.do(t, http.MethodGet, "/api/statuses", nil)
	var body struct {
		Statuses []feed.DeviceStatus `json:"statuses"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(body.Statuses) != 1 || body.Statuses[0].DeviceID != "4" || body.Statuses[0].Status != "offline" {
		t.Errorf("statuses = %+v", body.Statuses)
	}
}

func TestListAuditLogs(t *testing.T) {
	f := newFixture(t, respondJSON(http.StatusNotFound, `{"message":"device not found"}`))
	f.do(t, http.MethodPost, "/devices/5/command", url.Values{"command": {"ON"}})
	f.do(t, http.MethodPost, "/devices/6/delete", nil)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"all", "/api/audit", 2},
		{"by action", "/api/audit?action=delete", 1},
		{"by entity", "/api/audit?entity_id=5", 1},
		{"by outcome", "/api/audit?outcome=ok", 0},
		{"limited", "/api/audit?limit=1", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, tt.target, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			var body audit.ListResult
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decoding: %v", err)
			}
			if len(body.Entries) != tt.want {
				t.Errorf("entries = %d, want %d", len(body.Entries), tt.want)
			}
		})
	}
}

func TestListAuditLogsBadParams(t *testing.T) {
	f := newFixture(t, nil)
	for _, target := range []string{"/api/audit?limit=0", "/api/audit?offset=-1", "/api/audit?outcome=maybe"} {
		if w := f.do(t, http.MethodGet, target, nil); w.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", target, w.Code)
		}
	}
}

func TestMetrics(t *testing.T) {
	f := newFixture(t, nil)
	for topic, status := range map[string]string{
		"device/status/1": `{"status":"online"}`,
		"device/status/2": `{"status":"Online"}`,
		"device/status/3": `{"status":"offline"}`,
	} {
		if err := f.feed.Handle(topic, []byte(status)); err != nil {
			t.Fatalf("Handle: %v", err)
		}
	}
	f.center.Notify(context.Background(), notify.Notification{Kind: notify.KindInfo, Message: "hi"})

	w := f.do(t, http.MethodGet, "/api/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var m SystemMetrics
	if err := json.NewDecoder(w.Body).Decode(&m); err != nil {
		t.Fatalf("decoding: %v", err)
	}

	want := FeedMetrics{Live: true, Devices: 3, ByStatus: map[string]int{"online": 2, "offline": 1}}
	if diff := cmp.Diff(want, m.Feed); diff != "" {
		t.Errorf("feed metrics mismatch (-want +got):\n%s", diff)
	}
	if m.Notifications.Active != 1 {
		t.Errorf("active notifications = %d, want 1", m.Notifications.Active)
	}
	if m.Version != "test" || m.Runtime.Goroutines == 0 {
		t.Errorf("metrics = %+v", m)
	}
	if m.Database == nil {
		t.Error("database metrics missing")
	}
	if len(f.backend.Calls()) != 0 {
		t.Error("metrics must not call the backend")
	}
}

func TestNotificationsEndpoints(t *testing.T) {
	f := newFixture(t, nil)
	f.center.Notify(context.Background(), notify.Notification{ID: "ntf-1", Kind: notify.KindError, Message: "boom"})

	w := f.do(t, http.MethodGet, "/api/notifications", nil)
	var body struct {
		Notifications []map[string]any `json:"notifications"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(body.Notifications) != 1 || body.Notifications[0]["message"] != "boom" {
		t.Fatalf("notifications = %v", body.Notifications)
	}
	if body.Notifications[0]["duration_ms"] != float64(5000) {
		t.Errorf("duration_ms = %v, want 5000", body.Notifications[0]["duration_ms"])
	}

	if w := f.do(t, http.MethodDelete, "/api/notifications/ntf-1", nil); w.Code != http.StatusNoContent {
		t.Errorf("dismiss status = %d, want 204", w.Code)
	}
	if w := f.do(t, http.MethodDelete, "/api/notifications/ntf-1", nil); w.Code != http.StatusNotFound {
		t.Errorf("second dismiss status = %d, want 404", w.Code)
	}
}

func TestAPINotFound(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/nonexistent", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// ─── Static assets ─────────────────────────────────────────────────

func TestStaticAssets(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		path string
		code int
	}{
		{"/static/app.js", http.StatusOK},
		{"/static/app.css", http.StatusOK},
		{"/static/missing.js", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := f.do(t, http.MethodGet, tt.path, nil)
		if w.Code != tt.code {
			t.Errorf("GET %s: status = %d, want %d", tt.path, w.Code, tt.code)
		}
	}
}

// ─── Middleware ────────────────────────────────────────────────────

func TestRequestID(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/health", nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "client-123")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-123")
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("ACAO = %q, want %q", got, "http://localhost:3000")
	}
}

// ─── WebSocket ─────────────────────────────────────────────────────

func TestWebSocketReceivesNotifications(t *testing.T) {
	f := newFixture(t, nil)
	ts := httptest.NewServer(f.handler)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?channels=" + notify.ChannelNotification
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for f.srv.Hub().ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	f.center.Notify(context.Background(), notify.Notification{Kind: notify.KindError, Message: "boom"})

	//nolint:errcheck // test deadline
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg struct {
		Type      string         `json:"type"`
		EventType string         `json:"event_type"`
		Payload   map[string]any `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if msg.Type != WSTypeEvent || msg.EventType != notify.ChannelNotification {
		t.Errorf("message = %+v", msg)
	}
	if msg.Payload["message"] != "boom" || msg.Payload["kind"] != "error" {
		t.Errorf("payload = %v", msg.Payload)
	}
}

func TestWebSocketRelaysMQTTMessages(t *testing.T) {
	f := newFixture(t, nil)
	ts := httptest.NewServer(f.handler)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	subscribe := WSMessage{Type: WSTypeSubscribe, ID: "1", Payload: WSSubscribePayload{Channels: []string{feed.ChannelMessage}}}
	if err := conn.WriteJSON(subscribe); err != nil {
		t.Fatalf("write: %v", err)
	}

	//nolint:errcheck // test deadline
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ack WSMessage
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack.Type != WSTypeResponse || ack.ID != "1" {
		t.Fatalf("ack = %+v", ack)
	}

	if err := f.feed.Handle("device/report/8", []byte(`{"temp":20}`)); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	var msg struct {
		EventType string         `json:"event_type"`
		Payload   map[string]any `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.EventType != feed.ChannelMessage || msg.Payload["deviceId"] != "8" || msg.Payload["topic"] != "device/report/8" {
		t.Errorf("message = %+v", msg)
	}
}
