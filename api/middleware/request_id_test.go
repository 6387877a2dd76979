package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestRequestIDKeepsValidIncomingID(t *testing.T) {
	var seen string
	handler := RequestID(newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "edge-abc-123")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if got := resp.Header().Get(requestIDHeader); got != "edge-abc-123" {
		t.Fatalf("expected echoed id, got %q", got)
	}
	if seen != "edge-abc-123" {
		t.Fatalf("expected id on context, got %q", seen)
	}
}

func TestRequestIDReplacesUnsafeIncomingID(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"too long":  strings.Repeat("a", maxRequestIDLength+1),
		"has space": "abc def",
		"non ascii": "ïd",
	}
	for name, incoming := range cases {
		t.Run(name, func(t *testing.T) {
			handler := RequestID(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if incoming != "" {
				req.Header.Set(requestIDHeader, incoming)
			}
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)

			got := resp.Header().Get(requestIDHeader)
			if got == "" || got == incoming {
				t.Fatalf("expected a freshly minted id, got %q", got)
			}
		})
	}
}

func TestRecovererWritesInternalEnvelope(t *testing.T) {
	logg := newTestLogger()
	handler := RequestID(logg)(Recoverer(logg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("cart exploded")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-panic")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "INTERNAL_ERROR" {
		t.Fatalf("unexpected code %q", body.Error.Code)
	}
	if body.Error.RequestID != "req-panic" {
		t.Fatalf("expected request id in envelope, got %q", body.Error.RequestID)
	}
}

func TestRecovererRepanicsOnAbortHandler(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
