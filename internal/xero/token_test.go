package xero

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeTokenFiles(t *testing.T, creds Credentials) (tokenPath, tenantPath string) {
	t.Helper()
	dir := t.TempDir()
	tokenPath = filepath.Join(dir, "xero_token.json")
	tenantPath = filepath.Join(dir, "xero_tenant_id.txt")

	data, err := json.Marshal(creds)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tokenPath, data, 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tenantPath, []byte("tenant-123\n"), 0600); err != nil {
		t.Fatal(err)
	}
	return tokenPath, tenantPath
}

func TestLoadMissingToken(t *testing.T) {
	store := NewTokenStore(TokenStoreConfig{
		TokenPath:  filepath.Join(t.TempDir(), "absent.json"),
		TenantPath: filepath.Join(t.TempDir(), "absent.txt"),
	})

	_, err := store.Load()
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Load() error = %v, expected AuthError", err)
	}
}

func TestLoadCorruptToken(t *testing.T) {
	dir := t.TempDir()
	tokenPath := filepath.Join(dir, "xero_token.json")
	if err := os.WriteFile(tokenPath, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewTokenStore(TokenStoreConfig{TokenPath: tokenPath})

	_, err := store.Load()
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Load() error = %v, expected AuthError for corrupted file", err)
	}
}

func TestHeaders(t *testing.T) {
	tokenPath, tenantPath := writeTokenFiles(t, Credentials{
		AccessToken:  "access-abc",
		RefreshToken: "refresh-abc",
	})
	store := NewTokenStore(TokenStoreConfig{TokenPath: tokenPath, TenantPath: tenantPath})

	headers, err := store.Headers()
	if err != nil {
		t.Fatalf("Headers() error = %v", err)
	}

	expected := map[string]string{
		"Authorization":  "Bearer access-abc",
		"Xero-tenant-id": "tenant-123",
		"Content-Type":   "application/json",
		"Accept":         "application/json",
	}
	for key, want := range expected {
		if got := headers[key]; got != want {
			t.Errorf("Headers()[%q] = %q, expected %q", key, got, want)
		}
	}
}

func TestRefreshSuccessPersists(t *testing.T) {
	identity := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.FormValue("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q, expected refresh_token", got)
		}
		if got := r.FormValue("refresh_token"); got != "refresh-old" {
			t.Errorf("refresh_token = %q, expected refresh-old", got)
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != "client-id" || pass != "client-secret" {
			t.Errorf("basic auth = %q/%q/%v, expected client credentials", user, pass, ok)
		}
		json.NewEncoder(w).Encode(Credentials{
			AccessToken:  "access-new",
			RefreshToken: "refresh-new",
		})
	}))
	defer identity.Close()

	tokenPath, tenantPath := writeTokenFiles(t, Credentials{
		AccessToken:  "access-old",
		RefreshToken: "refresh-old",
	})
	store := NewTokenStore(TokenStoreConfig{
		TokenPath:    tokenPath,
		TenantPath:   tenantPath,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     identity.URL,
	})

	refreshed, err := store.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if refreshed.AccessToken != "access-new" {
		t.Errorf("refreshed access token = %q, expected access-new", refreshed.AccessToken)
	}

	// The new pair must be on disk.
	persisted, err := store.Load()
	if err != nil {
		t.Fatalf("Load() after refresh error = %v", err)
	}
	if persisted.AccessToken != "access-new" || persisted.RefreshToken != "refresh-new" {
		t.Errorf("persisted credentials = %+v, expected refreshed pair", persisted)
	}
}

func TestRefreshInvalidGrantDeletesCredentials(t *testing.T) {
	identity := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer identity.Close()

	tokenPath, tenantPath := writeTokenFiles(t, Credentials{
		AccessToken:  "access-old",
		RefreshToken: "refresh-expired",
	})
	store := NewTokenStore(TokenStoreConfig{
		TokenPath:    tokenPath,
		TenantPath:   tenantPath,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     identity.URL,
	})

	_, err := store.Refresh(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Refresh() error = %v, expected AuthError", err)
	}

	// Stale credentials must not linger.
	if _, statErr := os.Stat(tokenPath); !os.IsNotExist(statErr) {
		t.Errorf("token file still exists after invalid_grant, expected deletion")
	}
}

func TestRefreshOtherErrorKeepsCredentials(t *testing.T) {
	identity := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("identity provider down"))
	}))
	defer identity.Close()

	tokenPath, tenantPath := writeTokenFiles(t, Credentials{
		AccessToken:  "access-old",
		RefreshToken: "refresh-old",
	})
	store := NewTokenStore(TokenStoreConfig{
		TokenPath:    tokenPath,
		TenantPath:   tenantPath,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     identity.URL,
	})

	_, err := store.Refresh(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Refresh() error = %v, expected AuthError", err)
	}
	if _, statErr := os.Stat(tokenPath); statErr != nil {
		t.Errorf("token file missing after transient refresh failure: %v", statErr)
	}
}
