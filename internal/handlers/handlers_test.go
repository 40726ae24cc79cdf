package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/barber-assistant/internal/availability"
	"github.com/BruksfildServices01/barber-assistant/internal/config"
	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	"github.com/BruksfildServices01/barber-assistant/internal/intent"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ======================================================
// FAKES
// ======================================================

type fakeRouter struct {
	calls []string
	err   error
}

func (f *fakeRouter) HandleInboundMessage(_ context.Context, phone, _ string, text string) ([]intent.OutboundMessage, error) {
	f.calls = append(f.calls, phone+":"+text)
	if f.err != nil {
		return nil, f.err
	}
	return []intent.OutboundMessage{{To: phone, Body: "echo " + text}}, nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) Send(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to+":"+body)
	return nil
}

func newWebhookEngine(router InboundRouter, sender *fakeSender) *gin.Engine {
	h := NewWebhookHandler(router, sender, "s3cret", zap.NewNop())
	r := gin.New()
	r.GET("/webhook", h.Verify)
	r.POST("/webhook", h.Receive)
	return r
}

// ======================================================
// WEBHOOK
// ======================================================

func TestWebhookVerify(t *testing.T) {
	r := newWebhookEngine(&fakeRouter{}, &fakeSender{})

	cases := []struct {
		query string
		code  int
	}{
		{"hub.mode=subscribe&hub.verify_token=s3cret&hub.challenge=42", http.StatusOK},
		{"hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=42", http.StatusForbidden},
		{"hub.challenge=42", http.StatusBadRequest},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webhook?"+tc.query, nil))
		if w.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d", tc.query, tc.code, w.Code)
		}
		if tc.code == http.StatusOK && w.Body.String() != "42" {
			t.Fatalf("expected challenge echoed, got %q", w.Body.String())
		}
	}
}

const inboundPayload = `{
  "entry": [{
    "changes": [{
      "value": {
        "contacts": [{"wa_id": "15551230001", "profile": {"name": "Ana"}}],
        "messages": [
          {"id": "m1", "from": "15551230001", "type": "text", "text": {"body": "HELP"}},
          {"id": "m2", "from": "15551230001", "type": "image"}
        ]
      }
    }]
  }]
}`

func TestWebhookReceive(t *testing.T) {
	router := &fakeRouter{}
	sender := &fakeSender{}
	r := newWebhookEngine(router, sender)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(inboundPayload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(router.calls) != 1 || router.calls[0] != "15551230001:HELP" {
		t.Fatalf("unexpected router calls: %v", router.calls)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 deliveries, got %v", sender.sent)
	}
	if !strings.Contains(sender.sent[1], "only process text messages") {
		t.Fatalf("expected text-only reply, got %q", sender.sent[1])
	}

	var body struct {
		Replies []intent.OutboundMessage `json:"replies"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Replies) != 2 || body.Replies[0].Body != "echo HELP" {
		t.Fatalf("unexpected replies: %+v", body.Replies)
	}
}

func TestWebhookReceiveRouterError(t *testing.T) {
	router := &fakeRouter{err: errors.New("invalid_phone")}
	sender := &fakeSender{}
	r := newWebhookEngine(router, sender)

	payload := `{"entry":[{"changes":[{"value":{"messages":[{"id":"m1","from":"abc","type":"text","text":{"body":"hi"}}]}}]}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected nothing sent, got %v", sender.sent)
	}
}

func TestWebhookReceiveBadPayload(t *testing.T) {
	r := newWebhookEngine(&fakeRouter{}, &fakeSender{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{")))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

// ======================================================
// AUTH
// ======================================================

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pass123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cfg := &config.Config{
		JWTSecret:         "test-secret",
		AdminUsername:     "admin",
		AdminPasswordHash: string(hash),
	}

	r := gin.New()
	r.POST("/login", NewAuthHandler(cfg).Login)

	login := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	w := login(`{"username":"admin","password":"pass123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || out.Token == "" {
		t.Fatalf("expected token, got %s", w.Body.String())
	}

	if w := login(`{"username":"admin","password":"nope"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w := login(`{"username":"admin"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLoginDisabledWithoutHash(t *testing.T) {
	r := gin.New()
	r.POST("/login", NewAuthHandler(&config.Config{AdminUsername: "admin"}).Login)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"admin","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

// ======================================================
// PUBLIC
// ======================================================

func newPublicEngine(t *testing.T) (*gin.Engine, models.Barber) {
	t.Helper()
	ctx := context.Background()

	store, err := directory.NewMemoryStore()
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if _, err := store.CreateService(ctx, models.Service{Name: "Haircut", DurationMin: 30, Price: 25, Active: true}); err != nil {
		t.Fatalf("service: %v", err)
	}
	if _, err := store.CreateService(ctx, models.Service{Name: "Perm", DurationMin: 60, Price: 50}); err != nil {
		t.Fatalf("service: %v", err)
	}
	barber, err := store.CreateBarber(ctx, models.Barber{
		Name:         "Joe",
		Active:       true,
		WorkingHours: map[string]*models.TimeRange{"tuesday": {Start: "09:00", End: "12:00"}},
	})
	if err != nil {
		t.Fatalf("barber: %v", err)
	}

	engine, err := availability.NewEngine(store, "09:00", "18:00")
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	h := NewPublicHandler(store, engine)
	r := gin.New()
	r.GET("/services", h.ListServices)
	r.GET("/availability", h.Availability)
	return r, barber
}

func TestPublicListServicesOnlyActive(t *testing.T) {
	r, _ := newPublicEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/services", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var out struct {
		Data  []models.Service `json:"data"`
		Total int              `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Total != 1 || out.Data[0].Name != "Haircut" {
		t.Fatalf("expected only the active service, got %+v", out)
	}
}

func TestPublicAvailability(t *testing.T) {
	r, barber := newPublicEngine(t)

	get := func(query string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/availability?"+query, nil))
		return w
	}

	if w := get(""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without date, got %d", w.Code)
	}
	if w := get("date=someday"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", w.Code)
	}

	// 2026-10-19 is a Monday; the barber only works Tuesdays.
	w := get("date=10/19/2026&barber_id=" + barber.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var closed availability.OpenSlots
	if err := json.Unmarshal(w.Body.Bytes(), &closed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if closed.Date != "2026-10-19" || closed.Reason != availability.ReasonBarberNotWorking || len(closed.Slots) != 0 {
		t.Fatalf("unexpected result: %+v", closed)
	}

	w = get("date=2026-10-20&barber_id=" + barber.ID)
	var open availability.OpenSlots
	if err := json.Unmarshal(w.Body.Bytes(), &open); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(open.Slots) != 6 || open.Slots[0] != "09:00" || open.Slots[5] != "11:30" {
		t.Fatalf("unexpected slots: %+v", open)
	}

	if w := get("date=2026-10-20&barber_id=missing"); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown barber, got %d", w.Code)
	}
}
