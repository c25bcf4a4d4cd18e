// Package aggregator is the thin boundary to the bank-data aggregator. Only
// the link-token flow lives here; account and transaction syncing arrive
// through the aggregator's webhooks and land directly in the store.
package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spendlens/spendlens/internal/linktoken"
)

// Token is a short-lived link token for the aggregator's link widget.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// LinkTokenSource mints link tokens.
type LinkTokenSource interface {
	CreateLinkToken(ctx context.Context, userID string) (Token, error)
}

// Client talks to the aggregator's HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
}

// NewClient creates an aggregator client.
func NewClient(baseURL, clientID, secret string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		clientID:   clientID,
		secret:     secret,
	}
}

// CreateLinkToken mints a fresh link token for the user.
func (c *Client) CreateLinkToken(ctx context.Context, userID string) (Token, error) {
	body := map[string]interface{}{
		"client_id": c.clientID,
		"secret":    c.secret,
		"user":      map[string]string{"client_user_id": userID},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Token{}, fmt.Errorf("aggregator: marshal link token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/link/token/create", bytes.NewReader(payload))
	if err != nil {
		return Token{}, fmt.Errorf("aggregator: build link token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("aggregator: create link token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Token{}, fmt.Errorf("aggregator: create link token: status %d", resp.StatusCode)
	}

	var out struct {
		LinkToken  string    `json:"link_token"`
		Expiration time.Time `json:"expiration"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Token{}, fmt.Errorf("aggregator: decode link token response: %w", err)
	}
	return Token{Value: out.LinkToken, ExpiresAt: out.Expiration}, nil
}

// CachedSource serves link tokens from a cache, minting through the wrapped
// source only on a miss.
type CachedSource struct {
	source LinkTokenSource
	cache  *linktoken.Cache
}

// NewCachedSource wraps source with the given cache.
func NewCachedSource(source LinkTokenSource, cache *linktoken.Cache) *CachedSource {
	return &CachedSource{source: source, cache: cache}
}

// CreateLinkToken returns the cached token for the user when one is still
// valid, otherwise mints and caches a fresh one.
func (s *CachedSource) CreateLinkToken(ctx context.Context, userID string) (Token, error) {
	if cached, ok := s.cache.Get(userID); ok {
		return Token{Value: cached}, nil
	}

	token, err := s.source.CreateLinkToken(ctx, userID)
	if err != nil {
		return Token{}, err
	}
	if !token.ExpiresAt.IsZero() {
		s.cache.Put(userID, token.Value, token.ExpiresAt)
	}
	return token, nil
}
