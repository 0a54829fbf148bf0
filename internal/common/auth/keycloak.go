// internal/common/auth/keycloak.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"eam-assistant/internal/common/errors"
)

// TokenValidator validates bearer tokens presented to the API.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*TokenInfo, error)
}

// KeycloakClient validates access tokens through the realm's introspection endpoint.
type KeycloakClient struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu    sync.Mutex
	cache map[string]*TokenInfo
}

// TokenInfo holds the information returned by the token introspection endpoint.
type TokenInfo struct {
	Active    bool   `json:"active"`
	Scope     string `json:"scope,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Username  string `json:"username,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Exp       int64  `json:"exp,omitempty"` // seconds since epoch
	Sub       string `json:"sub,omitempty"`
	Iss       string `json:"iss,omitempty"`
}

// NewKeycloakClient creates a new instance of KeycloakClient.
func NewKeycloakClient(baseURL, realm, clientID, clientSecret string) *KeycloakClient {
	return &KeycloakClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		cache:        make(map[string]*TokenInfo),
	}
}

// ValidateToken checks if an access token is valid and active. Active tokens
// are remembered until their exp claim passes.
func (k *KeycloakClient) ValidateToken(ctx context.Context, token string) (*TokenInfo, error) {
	if token == "" {
		return nil, errors.NewUnauthorizedError("missing bearer token")
	}

	if info := k.cached(token); info != nil {
		return info, nil
	}

	introspectURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token/introspect", k.baseURL, k.realm)

	data := url.Values{}
	data.Set("token", token)
	data.Set("token_type_hint", "access_token")
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, introspectURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, &errors.StandardError{
			Code:      errors.ErrCodeUnauthorized,
			Message:   "Failed to reach Keycloak",
			Details:   err.Error(),
			Retryable: true,
			Timestamp: time.Now().UTC(),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.NewUnauthorizedError(fmt.Sprintf("introspection failed with status %d: %s", resp.StatusCode, string(body)))
	}

	var info TokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.NewUnauthorizedError("failed to decode token introspection response")
	}

	if !info.Active {
		return nil, errors.NewUnauthorizedError("token is not active")
	}

	k.remember(token, &info)
	return &info, nil
}

func (k *KeycloakClient) cached(token string) *TokenInfo {
	k.mu.Lock()
	defer k.mu.Unlock()

	info, ok := k.cache[token]
	if !ok {
		return nil
	}
	if info.Exp > 0 && time.Now().Unix() >= info.Exp {
		delete(k.cache, token)
		return nil
	}
	return info
}

func (k *KeycloakClient) remember(token string, info *TokenInfo) {
	if info.Exp == 0 {
		return
	}
	k.mu.Lock()
	k.cache[token] = info
	k.mu.Unlock()
}
