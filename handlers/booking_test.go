package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"playvisit/models"
	"playvisit/services/ledger"
	"playvisit/services/session"
)

// fakeEngine returns a scripted result from AttemptBook and records the
// arguments it was called with.
type fakeEngine struct {
	entry *models.VisitLogEntry
	err   error

	gotClientID    string
	gotVisitNumber int
	availCalls     int
}

func (f *fakeEngine) AttemptBook(ctx context.Context, clientID string, visitNumber int, date, periodLabel string) (*models.VisitLogEntry, error) {
	f.gotClientID = clientID
	f.gotVisitNumber = visitNumber
	if f.err != nil {
		return nil, f.err
	}
	return f.entry, nil
}

func (f *fakeEngine) AvailabilityFor(ctx context.Context, date string, packageType int) ([]models.PeriodStatus, error) {
	f.availCalls++
	return []models.PeriodStatus{{Period: "08:00–11:00", Available: 15}}, nil
}

func (f *fakeEngine) ManualBook(ctx context.Context, actor, date, periodLabel string, packageType, children int) (*models.VisitLogEntry, error) {
	return nil, nil
}

func bookRequest(t *testing.T, h *BookingHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/bookings", h.BookHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func loggedInSession(t *testing.T, userID, clientID string) *session.MemoryStore {
	t.Helper()
	s := session.NewMemoryStore()
	ctx := context.Background()
	if err := s.Set(ctx, userID, models.SessionKeyLoginID, clientID); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	for _, k := range models.SessionBookingKeys {
		if err := s.Set(ctx, userID, k, "x"); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}
	return s
}

func TestBookHandler_Success(t *testing.T) {
	eng := &fakeEngine{entry: &models.VisitLogEntry{ClientID: "1234", VisitNumber: 3}}
	sessions := loggedInSession(t, "chat1", "1234")
	h := NewBookingHandler(eng, sessions, zap.NewNop())

	w := bookRequest(t, h, `{"userId":"chat1","visitNumber":3,"date":"2024-06-01","period":"08:00–11:00"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if eng.gotClientID != "1234" || eng.gotVisitNumber != 3 {
		t.Errorf("engine called with (%s, %d)", eng.gotClientID, eng.gotVisitNumber)
	}

	// Booking keys cleared, login retained.
	ctx := context.Background()
	for _, k := range models.SessionBookingKeys {
		if _, ok, _ := sessions.Get(ctx, "chat1", k); ok {
			t.Errorf("booking key %q survived a successful commit", k)
		}
	}
	if _, ok, _ := sessions.Get(ctx, "chat1", models.SessionKeyLoginID); !ok {
		t.Errorf("login id cleared by a successful commit")
	}
}

func TestBookHandler_NoSession(t *testing.T) {
	h := NewBookingHandler(&fakeEngine{}, session.NewMemoryStore(), zap.NewNop())

	w := bookRequest(t, h, `{"userId":"chat1","visitNumber":1,"date":"2024-06-01","period":"08:00–11:00"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp["code"] != "SESSION_ABSENT" {
		t.Errorf("code = %v, want SESSION_ABSENT", resp["code"])
	}
}

func TestBookHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantTag  string
	}{
		{"out of order", &ledger.OutOfOrderVisitError{Expected: 2}, http.StatusConflict, "OUT_OF_ORDER"},
		{"inactive", ledger.ErrClientInactive, http.StatusForbidden, "CLIENT_INACTIVE"},
		{"elapsed", ledger.ErrPeriodElapsed, http.StatusConflict, "PERIOD_ELAPSED"},
		{"full", ledger.ErrPeriodFull, http.StatusConflict, "PERIOD_FULL"},
		{"unknown period", ledger.ErrUnknownPeriod, http.StatusBadRequest, "UNKNOWN_PERIOD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := loggedInSession(t, "chat1", "1234")
			h := NewBookingHandler(&fakeEngine{err: tt.err}, sessions, zap.NewNop())

			w := bookRequest(t, h, `{"userId":"chat1","visitNumber":1,"date":"2024-06-01","period":"08:00–11:00"}`)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			var resp map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("bad response body: %v", err)
			}
			if resp["code"] != tt.wantTag {
				t.Errorf("code = %v, want %s", resp["code"], tt.wantTag)
			}
			if tt.wantTag == "OUT_OF_ORDER" && resp["expected"] != float64(2) {
				t.Errorf("expected = %v, want 2", resp["expected"])
			}

			// A rejected booking leaves the session untouched.
			if _, ok, _ := sessions.Get(context.Background(), "chat1", models.SessionKeyVisitNumber); !ok {
				t.Errorf("rejection cleared the session")
			}
		})
	}
}

func TestBookHandler_BadInput(t *testing.T) {
	h := NewBookingHandler(&fakeEngine{}, session.NewMemoryStore(), zap.NewNop())

	tests := []struct {
		name string
		body string
	}{
		{"missing fields", `{"userId":"chat1"}`},
		{"bad date", `{"userId":"chat1","visitNumber":1,"date":"01.06.2024","period":"08:00–11:00"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := bookRequest(t, h, tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestAvailabilityHandler_Validation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewBookingHandler(&fakeEngine{}, session.NewMemoryStore(), zap.NewNop())
	router := gin.New()
	router.GET("/api/bookings", h.AvailabilityHandler)

	tests := []struct {
		name     string
		query    string
		wantCode int
	}{
		{"ok", "date=2024-06-01&package=8", http.StatusOK},
		{"bad date", "date=june-1&package=8", http.StatusBadRequest},
		{"unknown package", "date=2024-06-01&package=9", http.StatusBadRequest},
		{"missing package", "date=2024-06-01", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/bookings?"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}
