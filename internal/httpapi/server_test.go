package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/donovan-yohan/dicetable-server/internal/config"
	"github.com/donovan-yohan/dicetable-server/internal/roommanager"
)

func newTestServer() *Server {
	cfg := config.DefaultServerConfig()
	rooms := roommanager.NewManager(zap.NewNop())
	return NewServer(cfg, rooms, zap.NewNop(), "test-instance")
}

func TestHealth_ReportsInstanceID(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if !contains(rec.Body.String(), `"instanceId":"test-instance"`) {
		t.Fatalf("expected instanceId in body, got %s", rec.Body.String())
	}
}

func TestCreateRoom_Returns201WithRoomID(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", nil)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201", rec.Code)
	}
	if !contains(rec.Body.String(), `"roomId"`) {
		t.Fatalf("expected roomId in body, got %s", rec.Body.String())
	}
}

func TestGetRoom_UnknownIDReturns404(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/rooms/doesnotexist", nil)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
	if !contains(rec.Body.String(), `"ROOM_NOT_FOUND"`) {
		t.Fatalf("expected ROOM_NOT_FOUND in body, got %s", rec.Body.String())
	}
}

func TestGetRoom_ExistingRoomReportsCounts(t *testing.T) {
	s := newTestServer()
	room := s.rooms.CreateRoom()
	room.AddPlayer("p1", "Alice", "#fff", &noopConn{})

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/"+room.ID, nil)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if !contains(rec.Body.String(), `"playerCount":1`) {
		t.Fatalf("expected playerCount 1 in body, got %s", rec.Body.String())
	}
}

func TestWebSocket_UnknownRoomReturns404BeforeUpgrade(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/ws/doesnotexist", nil)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404 before any upgrade is attempted", rec.Code)
	}
}

func TestCORS_ExactOriginAllowList(t *testing.T) {
	cfg := config.DefaultServerConfig()
	cfg.CORSOrigin = "https://dicetable.example.com"
	rooms := roommanager.NewManager(zap.NewNop())
	s := NewServer(cfg, rooms, zap.NewNop(), "test-instance")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != cfg.CORSOrigin {
		t.Fatalf("got Access-Control-Allow-Origin %q, want %q", got, cfg.CORSOrigin)
	}
}

type noopConn struct{}

func (noopConn) Send([]byte) error  { return nil }
func (noopConn) Close() error       { return nil }
func (noopConn) RemoteAddr() string { return "test" }

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (func() bool {
		for i := 0; i+len(substr) <= len(s); i++ {
			if s[i:i+len(substr)] == substr {
				return true
			}
		}
		return false
	})()
}
