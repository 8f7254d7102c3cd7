package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/vovakirdan/buzzer-server/internal/config"
)

func getJSON(t *testing.T, url string, wantStatus int, dst any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("get %s: expected status %d, got %d", url, wantStatus, resp.StatusCode)
	}
	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts, _ := startTestServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var empty StatsResponse
	getJSON(t, ts.URL+"/api/stats", http.StatusOK, &empty)
	if empty.Rooms != 0 || empty.Participants != 0 {
		t.Fatalf("expected empty stats, got %+v", empty)
	}

	host := dial(t, ctx, ts)
	createRoom(t, ctx, host, "single")

	var stats StatsResponse
	getJSON(t, ts.URL+"/api/stats", http.StatusOK, &stats)
	if stats.Rooms != 1 || stats.Participants != 1 {
		t.Fatalf("expected 1 room and 1 participant, got %+v", stats)
	}
}

func TestAdminRoutesDisabledByDefault(t *testing.T) {
	ts, _ := startTestServer(t, nil)
	getJSON(t, ts.URL+"/api/rooms", http.StatusNotFound, nil)
}

func TestAdminRoomRoutes(t *testing.T) {
	ts, _ := startTestServer(t, func(cfg *config.Config) {
		cfg.AdminAPI = true
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host := dial(t, ctx, ts)
	player := dial(t, ctx, ts)
	roomID := createRoom(t, ctx, host, "multiple")
	if !joinRoom(t, ctx, player, roomID) {
		t.Fatalf("join should succeed")
	}

	var rooms []RoomResponse
	getJSON(t, ts.URL+"/api/rooms", http.StatusOK, &rooms)
	if len(rooms) != 1 || rooms[0].ID != roomID || rooms[0].BuzzMode != "multiple" || rooms[0].MemberCount != 2 {
		t.Fatalf("unexpected rooms %+v", rooms)
	}

	var detail RoomDetailResponse
	getJSON(t, ts.URL+"/api/rooms/"+roomID, http.StatusOK, &detail)
	if detail.ID != roomID || len(detail.Members) != 2 {
		t.Fatalf("unexpected detail %+v", detail)
	}
	hosts := 0
	for _, m := range detail.Members {
		if m.IsHost {
			hosts++
			if m.ID != detail.Host {
				t.Fatalf("host flag on %s, room host is %s", m.ID, detail.Host)
			}
		}
	}
	if hosts != 1 {
		t.Fatalf("expected exactly one host, got %d", hosts)
	}

	var notFound ErrorResponse
	getJSON(t, ts.URL+"/api/rooms/nope", http.StatusNotFound, &notFound)
	if notFound.Error == "" {
		t.Fatalf("expected error body")
	}
}

func TestCORSPreflight(t *testing.T) {
	ts, _ := startTestServer(t, func(cfg *config.Config) {
		cfg.AllowedOrigins = []string{"quiz.example.com"}
	})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/stats", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Origin", "https://quiz.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://quiz.example.com" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}
}
