package services

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/radar/internal/shared"
)

func newTokenServer(t *testing.T, exchanges *atomic.Int32, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)

		if r.Method != http.MethodPost {
			t.Errorf("expected POST credential exchange, got %s", r.Method)
		}

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600}`))
	}))
}

func TestTokenProvider(t *testing.T) {
	t.Run("Requires Credentials", func(t *testing.T) {
		if _, err := NewTokenProvider("", "secret", "", nil); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
		if _, err := NewTokenProvider("id", "", "", nil); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Exchanges And Caches", func(t *testing.T) {
		var exchanges atomic.Int32
		server := newTokenServer(t, &exchanges, http.StatusOK)
		defer server.Close()

		provider, err := NewTokenProvider("id", "secret", server.URL, server.Client())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		token, err := provider.Token()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token.AccessToken != "fresh-token" {
			t.Errorf("expected fresh-token, got %s", token.AccessToken)
		}

		if _, err := provider.Token(); err != nil {
			t.Fatalf("expected no error on second call, got %v", err)
		}

		if got := exchanges.Load(); got != 1 {
			t.Errorf("expected exactly one credential exchange, got %d", got)
		}
	})

	t.Run("Concurrent Callers Share One Exchange", func(t *testing.T) {
		var exchanges atomic.Int32
		server := newTokenServer(t, &exchanges, http.StatusOK)
		defer server.Close()

		provider, err := NewTokenProvider("id", "secret", server.URL, server.Client())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := provider.Token(); err != nil {
					t.Errorf("expected no error, got %v", err)
				}
			}()
		}
		wg.Wait()

		if got := exchanges.Load(); got != 1 {
			t.Errorf("expected exactly one credential exchange, got %d", got)
		}
	})

	t.Run("Rejected Credentials Surface AuthError", func(t *testing.T) {
		var exchanges atomic.Int32
		server := newTokenServer(t, &exchanges, http.StatusBadRequest)
		defer server.Close()

		provider, err := NewTokenProvider("id", "wrong", server.URL, server.Client())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := provider.Token(); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})
}

func TestStaticTokenSource(t *testing.T) {
	source := StaticTokenSource("abc")
	token, err := source.Token()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token.AccessToken != "abc" {
		t.Errorf("expected abc, got %s", token.AccessToken)
	}
}
