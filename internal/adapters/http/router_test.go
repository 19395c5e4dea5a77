package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AntDavi/translation-server/internal/adapters/translate"
	"github.com/AntDavi/translation-server/internal/app"
	"github.com/AntDavi/translation-server/internal/app/orch"
	"github.com/AntDavi/translation-server/internal/config"
	"github.com/AntDavi/translation-server/internal/core/coretest"
	"github.com/AntDavi/translation-server/internal/domain"
	"github.com/AntDavi/translation-server/internal/protocol"
)

func newRouter(t *testing.T) (nethttp.Handler, *orch.Orchestrator) {
	t.Helper()
	cfg := &config.Config{
		Mode:       "release",
		ReadLimit:  32 << 10,
		PingPeriod: 54 * time.Second,
		PongWait:   60 * time.Second,
		WriteWait:  10 * time.Second,
		SendBuffer: 8,
	}
	o := orch.New(app.NewRegistry(), translate.Identity{}, app.SimplePolicy{})
	return SetupRouter(context.Background(), cfg, o), o
}

func TestRouter_Healthz(t *testing.T) {
	r, _ := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/healthz", nil))

	if w.Code != nethttp.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestRouter_Rooms(t *testing.T) {
	r, o := newRouter(t)
	for i, room := range []string{"room-b", "room-a", "room-b"} {
		c := coretest.NewConn(string(rune('a' + i)))
		if _, err := o.Join(c, &protocol.Join{ClientID: "p", RoomID: room, Language: "en"}); err != nil {
			t.Fatal(err)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/api/rooms", nil))
	if w.Code != nethttp.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var rooms []domain.RoomInfo
	if err := json.Unmarshal(w.Body.Bytes(), &rooms); err != nil {
		t.Fatal(err)
	}
	want := []domain.RoomInfo{{ID: "room-a", MemberCount: 1}, {ID: "room-b", MemberCount: 2}}
	if len(rooms) != len(want) {
		t.Fatalf("expected %v, got %v", want, rooms)
	}
	for i := range want {
		if rooms[i] != want[i] {
			t.Errorf("rooms[%d] = %v, want %v", i, rooms[i], want[i])
		}
	}
}

func TestRouter_WebSocketRequiresUpgrade(t *testing.T) {
	r, _ := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/ws", nil))
	if w.Code != nethttp.StatusBadRequest {
		t.Errorf("plain GET on /ws should be rejected, got %d", w.Code)
	}
}
