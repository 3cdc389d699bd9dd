// Package xero provides a client for the Xero accounting API: OAuth2 token
// persistence and refresh, expense account resolution, tax rate resolution,
// and payable invoice submission.
package xero

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultTokenURL = "https://identity.xero.com/connect/token"

// Credentials holds the persisted OAuth2 token pair. Expiry is implicit: a
// 401 from the API is the signal to refresh.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// TokenStore persists OAuth2 credentials and the tenant id, and refreshes
// the access token through the identity endpoint. It assumes a single
// writer process; the files are overwritten atomically so concurrent
// readers never observe a partial write.
type TokenStore struct {
	tokenPath    string
	tenantPath   string
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
}

// TokenStoreConfig holds configuration for the token store.
type TokenStoreConfig struct {
	TokenPath    string
	TenantPath   string
	ClientID     string
	ClientSecret string
	TokenURL     string // defaults to the Xero identity endpoint
	Timeout      time.Duration
}

// NewTokenStore creates a new token store.
func NewTokenStore(cfg TokenStoreConfig) *TokenStore {
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &TokenStore{
		tokenPath:    cfg.TokenPath,
		tenantPath:   cfg.TenantPath,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		tokenURL:     cfg.TokenURL,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
	}
}

// Load reads the persisted credentials from disk.
func (s *TokenStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.tokenPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &AuthError{Op: "authentication required - no token found"}
		}
		return nil, &AuthError{Op: "read token file", Err: err}
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, &AuthError{Op: "corrupted token file - please reauthenticate", Err: err}
	}
	if creds.AccessToken == "" {
		return nil, &AuthError{Op: "no access token found - please authenticate first"}
	}
	return &creds, nil
}

// Save persists credentials atomically (write to a temp file, then rename)
// so a concurrent reader never sees a partial write.
func (s *TokenStore) Save(creds *Credentials) error {
	dir := filepath.Dir(s.tokenPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to flush token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close token file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set token file mode: %w", err)
	}
	if err := os.Rename(tmpName, s.tokenPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

// TenantID reads the persisted tenant id.
func (s *TokenStore) TenantID() (string, error) {
	data, err := os.ReadFile(s.tenantPath)
	if err != nil {
		return "", &AuthError{Op: "tenant id not found - run the OAuth flow first", Err: err}
	}
	return strings.TrimSpace(string(data)), nil
}

// Headers builds the Authorization and tenant headers for Xero API calls.
func (s *TokenStore) Headers() (map[string]string, error) {
	creds, err := s.Load()
	if err != nil {
		return nil, err
	}
	tenantID, err := s.TenantID()
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"Authorization":  "Bearer " + creds.AccessToken,
		"Xero-tenant-id": tenantID,
		"Content-Type":   "application/json",
		"Accept":         "application/json",
	}, nil
}

// Refresh exchanges the stored refresh token for a new token pair and
// persists it. When the identity endpoint reports invalid_grant the stored
// credentials are deleted so stale credentials never linger silently.
func (s *TokenStore) Refresh(ctx context.Context) (*Credentials, error) {
	if s.clientID == "" || s.clientSecret == "" {
		return nil, &AuthError{Op: "missing client id or client secret"}
	}

	creds, err := s.Load()
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", creds.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &AuthError{Op: "build refresh request", Err: err}
	}
	basic := base64.StdEncoding.EncodeToString([]byte(s.clientID + ":" + s.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &AuthError{Op: "token refresh request failed", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusBadRequest {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error == "invalid_grant" {
			// Clear out the stored credentials so the next attempt fails loudly.
			os.Remove(s.tokenPath)
			return nil, &AuthError{Op: "refresh token has expired or is invalid - please re-authenticate"}
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{Op: fmt.Sprintf("token refresh failed (HTTP %d): %s", resp.StatusCode, string(body))}
	}

	var refreshed Credentials
	if err := json.Unmarshal(body, &refreshed); err != nil {
		return nil, &AuthError{Op: "failed to parse token response", Err: err}
	}

	if err := s.Save(&refreshed); err != nil {
		return nil, &AuthError{Op: "failed to save refreshed token", Err: err}
	}
	return &refreshed, nil
}
