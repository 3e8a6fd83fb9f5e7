package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"

	"rentbook/internal/app/engine"
	domainproperty "rentbook/internal/domain/property"
	"rentbook/internal/domain/shared/money"
	domainuser "rentbook/internal/domain/user"
	"rentbook/internal/infra/config"
	"rentbook/internal/infra/obs"
	"rentbook/internal/infra/storage/memory"
	"rentbook/internal/infra/validation"
)

var testSecret = []byte("test-secret")

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memory.NewStore()
	ctx := context.Background()
	p, err := domainproperty.New(domainproperty.CreateParams{ID: "p1", OwnerID: "host", NightlyPrice: money.Must(12000, "USD"), Available: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Properties.Save(ctx, p); err != nil {
		t.Fatal(err)
	}
	users := map[string]string{"user-alice": "alice", "user-bob": "bob", "host": "hana"}
	for id, name := range users {
		u, err := domainuser.NewUser(domainuser.CreateParams{ID: domainuser.ID(id), Username: name})
		if err != nil {
			t.Fatal(err)
		}
		if err := store.Users.Save(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	eng := engine.New(engine.Deps{
		UoWFactory:      store.Factory(),
		Locker:          memory.NewLocker(time.Second),
		Outbox:          memory.NewOutbox(),
		Idempotency:     memory.NewIdempotencyStore(),
		Validator:       validation.New(),
		Logger:          obs.Discard(),
		DefaultCurrency: "USD",
	})
	auth := AuthMiddleware{Secret: testSecret, Logger: obs.Discard()}
	return NewRouter(config.Config{Env: "test", CORSOrigins: []string{"*"}}, obs.Middleware{Logger: obs.Discard()}, obs.HealthHandlers{}, Handlers{
		Bookings:       &BookingHandler{Commands: eng.Commands, Queries: eng.Queries},
		Payments:       &PaymentHandler{Commands: eng.Commands, Queries: eng.Queries},
		Reviews:        &ReviewHandler{Commands: eng.Commands, Queries: eng.Queries},
		Availability:   &AvailabilityHandler{Queries: eng.Queries},
		AuthMiddleware: auth.Handle,
	})
}

func token(t *testing.T, username string) string {
	t.Helper()
	tok, err := IssueToken(testSecret, username, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func do(t *testing.T, router http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, user))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func createBooking(t *testing.T, router http.Handler, user, start, end string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, router, http.MethodPost, "/api/v1/bookings", user, map[string]string{
		"property_id": "p1", "start_date": start, "end_date": end,
	})
}

func TestCreateBookingRequiresPrincipal(t *testing.T) {
	router := newTestRouter(t)
	rec := createBooking(t, router, "", "2025-06-01", "2025-06-03")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString(`{}`))
	req.Header.Set("Authorization", "Bearer not-a-token")
	bad := httptest.NewRecorder()
	router.ServeHTTP(bad, req)
	if bad.Code != http.StatusUnauthorized {
		t.Fatalf("invalid tokens should not authenticate, status = %d", bad.Code)
	}
}

func TestBookingFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec := createBooking(t, router, "alice", "2025-06-01", "2025-06-03")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body)
	}
	booking := decode(t, rec)
	id, _ := booking["id"].(string)
	total, _ := booking["total_price"].(map[string]any)
	if id == "" || total["amount"] != "240.00" {
		t.Fatalf("unexpected booking %v", booking)
	}

	rec = createBooking(t, router, "bob", "2025-06-03", "2025-06-05")
	if rec.Code != http.StatusConflict || decode(t, rec)["kind"] != "conflict" {
		t.Fatalf("overlap status = %d body = %s", rec.Code, rec.Body)
	}

	rec = do(t, router, http.MethodPost, "/api/v1/bookings/"+id+"/payment", "alice", map[string]any{"amount": 239.99, "method": "CREDIT_CARD"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("mismatched amount status = %d body = %s", rec.Code, rec.Body)
	}
	rec = do(t, router, http.MethodPost, "/api/v1/bookings/"+id+"/payment", "bob", map[string]any{"amount": "240.00", "method": "PAYPAL"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign payment status = %d body = %s", rec.Code, rec.Body)
	}
	rec = do(t, router, http.MethodPost, "/api/v1/bookings/"+id+"/payment", "alice", map[string]any{"amount": 240, "method": "paypal"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("payment status = %d body = %s", rec.Code, rec.Body)
	}

	rec = do(t, router, http.MethodPost, "/api/v1/bookings/"+id+"/review", "alice", map[string]any{"rating": 5})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("early review status = %d body = %s", rec.Code, rec.Body)
	}
	rec = do(t, router, http.MethodPut, "/api/v1/bookings/"+id+"/status", "hana", map[string]string{"property_id": "p1", "status": "COMPLETED"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status change = %d body = %s", rec.Code, rec.Body)
	}
	rec = do(t, router, http.MethodPost, "/api/v1/bookings/"+id+"/review", "alice", map[string]any{"rating": 4, "comment": "nice"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("review status = %d body = %s", rec.Code, rec.Body)
	}

	rec = do(t, router, http.MethodGet, "/api/v1/me/bookings", "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d body = %s", rec.Code, rec.Body)
	}
	items, _ := decode(t, rec)["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one booking, got %v", items)
	}

	rec = do(t, router, http.MethodGet, "/api/v1/properties/p1/payments/total", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("total status = %d body = %s", rec.Code, rec.Body)
	}
	sum, _ := decode(t, rec)["total"].(map[string]any)
	if sum["amount"] != "240.00" {
		t.Fatalf("unexpected total %v", sum)
	}
}

func TestErrorMapping(t *testing.T) {
	router := newTestRouter(t)
	cases := []struct {
		name   string
		method string
		path   string
		user   string
		body   any
		status int
		kind   string
	}{
		{"malformed date", http.MethodPost, "/api/v1/bookings", "alice", map[string]string{"property_id": "p1", "start_date": "06/01/2025", "end_date": "2025-06-03"}, http.StatusBadRequest, "validation"},
		{"reversed dates", http.MethodPost, "/api/v1/bookings", "alice", map[string]string{"property_id": "p1", "start_date": "2025-06-05", "end_date": "2025-06-03"}, http.StatusBadRequest, "validation"},
		{"missing body field", http.MethodPost, "/api/v1/bookings", "alice", map[string]string{"start_date": "2025-06-01"}, http.StatusBadRequest, "validation"},
		{"unknown property", http.MethodPost, "/api/v1/bookings", "alice", map[string]string{"property_id": "ghost", "start_date": "2025-06-01", "end_date": "2025-06-03"}, http.StatusNotFound, "not_found"},
		{"unknown booking", http.MethodGet, "/api/v1/bookings/nope", "", nil, http.StatusNotFound, "not_found"},
		{"invalid status", http.MethodPut, "/api/v1/bookings/nope/status", "hana", map[string]string{"property_id": "p1", "status": "LOST"}, http.StatusBadRequest, "validation"},
		{"unknown payment method", http.MethodPost, "/api/v1/bookings/nope/payment", "alice", map[string]any{"amount": "1", "method": "GOLD"}, http.StatusBadRequest, "validation"},
		{"anonymous write", http.MethodDelete, "/api/v1/bookings/nope", "", nil, http.StatusUnauthorized, "unauthorized"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, router, tc.method, tc.path, tc.user, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tc.status, rec.Body)
			}
			if kind := decode(t, rec)["kind"]; kind != tc.kind {
				t.Fatalf("kind = %v, want %s", kind, tc.kind)
			}
		})
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	router := newTestRouter(t)
	if rec := createBooking(t, router, "alice", "2025-06-01", "2025-06-03"); rec.Code != http.StatusCreated {
		t.Fatalf("create = %d", rec.Code)
	}
	rec := do(t, router, http.MethodGet, "/api/v1/properties/p1/availability?start_date=2025-06-03&end_date=2025-06-04", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	if decode(t, rec)["available"] != false {
		t.Fatalf("touching range should be unavailable: %s", rec.Body)
	}
	rec = do(t, router, http.MethodGet, "/api/v1/properties/p1/calendar?from=2025-06-01&to=2025-06-30", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	if blocks, _ := decode(t, rec)["blocks"].([]any); len(blocks) != 1 {
		t.Fatalf("unexpected calendar %s", rec.Body)
	}
}

func TestTrustHeaderMode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthMiddleware{TrustHeader: true}.Handle)
	router.GET("/whoami", func(c *gin.Context) {
		p, _ := currentPrincipal(c)
		c.String(http.StatusOK, p.Username)
	})
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(usernameHeader, " Alice ")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Body.String() != "alice" {
		t.Fatalf("actor = %q", rec.Body.String())
	}
}

func TestWritesRequireTheOwner(t *testing.T) {
	router := newTestRouter(t)
	rec := createBooking(t, router, "alice", "2025-07-01", "2025-07-04")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d body = %s", rec.Code, rec.Body)
	}
	id, _ := decode(t, rec)["id"].(string)
	path := "/api/v1/bookings/" + id

	forged, err := IssueToken([]byte("other-secret"), "alice", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name   string
		header string
		status int
	}{
		{"no credentials", "", http.StatusUnauthorized},
		{"forged token", "Bearer " + forged, http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"non bearer scheme", "Basic YWxpY2U6cHc=", http.StatusUnauthorized},
		{"other renter", "Bearer " + token(t, "bob"), http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tc.status, rec.Body)
			}
		})
	}
	if rec := do(t, router, http.MethodGet, path, "", nil); rec.Code != http.StatusOK {
		t.Fatalf("booking should survive rejected deletes, status = %d", rec.Code)
	}
	if rec := do(t, router, http.MethodDelete, path, "alice", nil); rec.Code != http.StatusOK {
		t.Fatalf("owner delete = %d body = %s", rec.Code, rec.Body)
	}
}

func TestHostOnlyOperations(t *testing.T) {
	router := newTestRouter(t)
	rec := createBooking(t, router, "alice", "2025-08-01", "2025-08-03")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d body = %s", rec.Code, rec.Body)
	}
	id, _ := decode(t, rec)["id"].(string)
	if rec := do(t, router, http.MethodPost, "/api/v1/bookings/"+id+"/payment", "alice", map[string]any{"amount": "240.00", "method": "CASH"}); rec.Code != http.StatusCreated {
		t.Fatalf("payment = %d body = %s", rec.Code, rec.Body)
	}

	statusPath := "/api/v1/bookings/" + id + "/payment/status"
	completed := map[string]string{"status": "COMPLETED"}
	if rec := do(t, router, http.MethodPut, statusPath, "", completed); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous payment status = %d", rec.Code)
	}
	if rec := do(t, router, http.MethodPut, statusPath, "alice", completed); rec.Code != http.StatusForbidden {
		t.Fatalf("renter payment status = %d body = %s", rec.Code, rec.Body)
	}
	if rec := do(t, router, http.MethodPut, "/api/v1/bookings/"+id+"/status", "alice", map[string]string{"property_id": "p1", "status": "CONFIRMED"}); rec.Code != http.StatusForbidden {
		t.Fatalf("renter status change = %d body = %s", rec.Code, rec.Body)
	}
	if rec := do(t, router, http.MethodPut, statusPath, "hana", completed); rec.Code != http.StatusOK {
		t.Fatalf("host payment status = %d body = %s", rec.Code, rec.Body)
	}

	rec = do(t, router, http.MethodPut, "/api/v1/bookings/"+id+"/status", "hana", map[string]string{"property_id": "p1", "status": "CANCELLED"})
	if rec.Code != http.StatusUnprocessableEntity || decode(t, rec)["kind"] != "state_conflict" {
		t.Fatalf("cancel after completed payment = %d body = %s", rec.Code, rec.Body)
	}
}
