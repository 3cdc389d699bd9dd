package xero

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
)

// newTestClient wires a Client and TokenStore against the given API handler
// plus an identity stub that always issues fresh credentials.
func newTestClient(t *testing.T, apiHandler http.Handler) (*Client, *int64) {
	t.Helper()

	var refreshCalls int64
	identity := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&refreshCalls, 1)
		json.NewEncoder(w).Encode(Credentials{
			AccessToken:  "access-refreshed",
			RefreshToken: "refresh-refreshed",
		})
	}))
	t.Cleanup(identity.Close)

	api := httptest.NewServer(apiHandler)
	t.Cleanup(api.Close)

	tokenPath, tenantPath := writeTokenFiles(t, Credentials{
		AccessToken:  "access-initial",
		RefreshToken: "refresh-initial",
	})
	tokens := NewTokenStore(TokenStoreConfig{
		TokenPath:    tokenPath,
		TenantPath:   tenantPath,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     identity.URL,
	})

	return NewClient(ClientConfig{BaseURL: api.URL, Tokens: tokens}), &refreshCalls
}

func TestDoRefreshesOnceOn401(t *testing.T) {
	var apiCalls int64
	client, refreshCalls := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&apiCalls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer access-refreshed" {
			t.Errorf("retry Authorization = %q, expected refreshed token", got)
		}
		w.Write([]byte(`{"ok":true}`))
	}))

	status, body, err := client.get(context.Background(), "/Accounts")
	if err != nil {
		t.Fatalf("get() error = %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, expected 200 after retry", status)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %q", body)
	}
	if apiCalls != 2 {
		t.Errorf("API called %d times, expected 2 (original + one retry)", apiCalls)
	}
	if *refreshCalls != 1 {
		t.Errorf("token refreshed %d times, expected exactly 1", *refreshCalls)
	}
}

func TestDoSecond401IsFatal(t *testing.T) {
	var apiCalls int64
	client, refreshCalls := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&apiCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))

	status, _, err := client.get(context.Background(), "/Accounts")
	if err != nil {
		t.Fatalf("get() error = %v", err)
	}
	if status != http.StatusUnauthorized {
		t.Errorf("status = %d, expected the second 401 to be returned", status)
	}
	if apiCalls != 2 {
		t.Errorf("API called %d times, expected 2 and no further retries", apiCalls)
	}
	if *refreshCalls != 1 {
		t.Errorf("token refreshed %d times, expected exactly 1", *refreshCalls)
	}
}

func TestDo401WithExpiredRefreshToken(t *testing.T) {
	identity := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	t.Cleanup(identity.Close)

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(api.Close)

	tokenPath, tenantPath := writeTokenFiles(t, Credentials{
		AccessToken:  "access-stale",
		RefreshToken: "refresh-stale",
	})
	tokens := NewTokenStore(TokenStoreConfig{
		TokenPath:    tokenPath,
		TenantPath:   tenantPath,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     identity.URL,
	})
	client := NewClient(ClientConfig{BaseURL: api.URL, Tokens: tokens})

	_, _, err := client.get(context.Background(), "/Accounts")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("get() error = %v, expected AuthError when the refresh token is dead", err)
	}
	if _, statErr := os.Stat(tokenPath); !os.IsNotExist(statErr) {
		t.Errorf("token file still exists after invalid_grant, expected deletion")
	}
}

func TestDoNo401NoRefresh(t *testing.T) {
	client, refreshCalls := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))

	if _, _, err := client.get(context.Background(), "/TaxRates"); err != nil {
		t.Fatalf("get() error = %v", err)
	}
	if *refreshCalls != 0 {
		t.Errorf("token refreshed %d times on a 200, expected 0", *refreshCalls)
	}
}
