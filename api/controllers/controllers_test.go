package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/newsletter"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/stores"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubNewsletter struct {
	err   error
	input newsletter.SubscribeInput
	calls int
}

func (s *stubNewsletter) Subscribe(ctx context.Context, input newsletter.SubscribeInput) error {
	s.calls++
	s.input = input
	return s.err
}

type stubStores struct {
	list []stores.StoreDTO
	err  error
}

func (s stubStores) GetByID(ctx context.Context, id int64) (*stores.StoreDTO, error) {
	return nil, nil
}

func (s stubStores) ListByOwner(ctx context.Context, userID string) ([]stores.StoreDTO, error) {
	return s.list, s.err
}

func (s stubStores) CountByOwner(ctx context.Context, userID string) (int64, error) {
	return int64(len(s.list)), nil
}

func (s stubStores) AuthorizeOwner(ctx context.Context, userID string, storeID int64) error {
	return nil
}

type stubSearch struct {
	query string
	err   error
}

func (s *stubSearch) Search(ctx context.Context, query string) (*products.SearchResult, error) {
	s.query = query
	if s.err != nil {
		return nil, s.err
	}
	return &products.SearchResult{Query: query, Groups: []products.CategoryGroup{}}, nil
}

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: config.AppEnvDev}}
}

func TestHealthReady(t *testing.T) {
	cases := []struct {
		name   string
		db     Pinger
		redis  Pinger
		status int
	}{
		{name: "all up", db: stubPinger{}, redis: stubPinger{}, status: http.StatusOK},
		{name: "db down", db: stubPinger{err: errors.New("refused")}, redis: stubPinger{}, status: http.StatusServiceUnavailable},
		{name: "redis down", db: stubPinger{}, redis: stubPinger{err: errors.New("timeout")}, status: http.StatusServiceUnavailable},
		{name: "redis not configured", db: stubPinger{}, status: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HealthReady(testConfig(), nil, tc.db, tc.redis)(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive(testConfig())(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Storefront-Env"); got != config.AppEnvDev {
		t.Fatalf("unexpected env header %q", got)
	}
}

func TestNewsletterSubscribeSuccess(t *testing.T) {
	svc := &stubNewsletter{}
	req := httptest.NewRequest(http.MethodPost, "/api/newsletter", strings.NewReader(`{"email":"Ada@Example.com"}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), "user_1"))
	rec := httptest.NewRecorder()

	NewsletterSubscribe(svc, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != newsletterSuccessMessage {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if svc.input.Email != "Ada@Example.com" || svc.input.UserID != "user_1" {
		t.Fatalf("unexpected input %+v", svc.input)
	}
}

func TestNewsletterSubscribeFailuresAreTextBadRequest(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		err   error
		calls int
	}{
		{name: "malformed body", body: `{"email":`, calls: 0},
		{name: "invalid email", body: `{"email":"nope"}`, calls: 0},
		{name: "duplicate", body: `{"email":"ada@example.com"}`, err: pkgerrors.New(pkgerrors.CodeConflict, "already subscribed"), calls: 1},
		{name: "send failure", body: `{"email":"ada@example.com"}`, err: pkgerrors.New(pkgerrors.CodeDependency, "send failed"), calls: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubNewsletter{err: tc.err}
			rec := httptest.NewRecorder()
			NewsletterSubscribe(svc, nil)(rec, httptest.NewRequest(http.MethodPost, "/api/newsletter", strings.NewReader(tc.body)))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if rec.Body.String() != newsletterFailureMessage {
				t.Fatalf("unexpected body %q", rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
				t.Fatalf("unexpected content type %q", ct)
			}
			if svc.calls != tc.calls {
				t.Fatalf("expected %d service calls, got %d", tc.calls, svc.calls)
			}
		})
	}
}

func TestProductSearch(t *testing.T) {
	svc := &stubSearch{}
	rec := httptest.NewRecorder()
	ProductSearch(svc, nil)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/search?q=++lamp++", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.query != "lamp" {
		t.Fatalf("expected trimmed query, got %q", svc.query)
	}
	var env types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.(map[string]any)["query"] != "lamp" {
		t.Fatalf("unexpected payload %v", env.Data)
	}
}

func TestProductSearchError(t *testing.T) {
	svc := &stubSearch{err: pkgerrors.New(pkgerrors.CodeDependency, "search failed")}
	rec := httptest.NewRecorder()
	ProductSearch(svc, nil)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/search?q=lamp", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestStoresListEmptyIsArray(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stores", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), "user_1"))
	rec := httptest.NewRecorder()

	StoresList(stubStores{}, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"data":{"stores":[]}}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestStoresListError(t *testing.T) {
	rec := httptest.NewRecorder()
	StoresList(stubStores{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")}, nil)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stores", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
