package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"solardash/internal/config"
	"solardash/internal/models"
)

var errMissing = errors.New("missing")

type memTokens struct {
	mu     sync.Mutex
	tokens map[string]models.OAuthToken
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: map[string]models.OAuthToken{}}
}

func (m *memTokens) GetOAuthToken(ctx context.Context, provider string) (*models.OAuthToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tok, ok := m.tokens[provider]
	if !ok {
		return nil, errMissing
	}
	return &tok, nil
}

func (m *memTokens) DeleteOAuthToken(ctx context.Context, provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[provider]; !ok {
		return errMissing
	}
	delete(m.tokens, provider)
	return nil
}

func (m *memTokens) SaveOAuthToken(ctx context.Context, tok *models.OAuthToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tok.RefreshToken == "" {
		tok.RefreshToken = m.tokens[tok.Provider].RefreshToken
	}
	tok.UpdatedAt = time.Now()
	m.tokens[tok.Provider] = *tok
	return nil
}

func tokenServer(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		*calls++
		if r.PostForm.Get("refresh_token") != "refresh-1" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"access-%d","token_type":"Bearer","expires_in":3600}`, *calls)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newStore(t *testing.T, tokens TokenStore, tokenURL string) *Store {
	t.Helper()
	cfg := &config.Config{
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		GoogleTokenURL:     tokenURL,
	}
	return New(tokens, errMissing, cfg, nil)
}

func TestToken_ValidIsNotRefreshed(t *testing.T) {
	calls := 0
	srv := tokenServer(t, &calls)
	tokens := newMemTokens()
	s := newStore(t, tokens, srv.URL)

	ctx := context.Background()
	require.NoError(t, s.SaveToken(ctx, ProviderGoogle, &oauth2.Token{
		AccessToken:  "current",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(time.Hour),
	}))

	tok, err := s.Token(ctx, ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "current", tok.AccessToken)
	assert.Zero(t, calls)
}

func TestToken_ExpiredIsRefreshedAndSaved(t *testing.T) {
	calls := 0
	srv := tokenServer(t, &calls)
	tokens := newMemTokens()
	s := newStore(t, tokens, srv.URL)

	ctx := context.Background()
	require.NoError(t, s.SaveToken(ctx, ProviderGoogle, &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	tok, err := s.Token(ctx, ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok.AccessToken)
	assert.Equal(t, 1, calls)

	stored := tokens.tokens[ProviderGoogle]
	assert.Equal(t, "access-1", stored.AccessToken)
	assert.Equal(t, "refresh-1", stored.RefreshToken)
	assert.True(t, stored.Expiry.After(time.Now()))
}

func TestRefresh_Forced(t *testing.T) {
	calls := 0
	srv := tokenServer(t, &calls)
	s := newStore(t, newMemTokens(), srv.URL)

	ctx := context.Background()
	require.NoError(t, s.SaveToken(ctx, ProviderGoogle, &oauth2.Token{
		AccessToken:  "current",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(time.Hour),
	}))

	tok, err := s.Refresh(ctx, ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok.AccessToken)
}

func TestRefresh_Errors(t *testing.T) {
	calls := 0
	srv := tokenServer(t, &calls)
	tokens := newMemTokens()
	s := newStore(t, tokens, srv.URL)
	ctx := context.Background()

	_, err := s.Refresh(ctx, "bing")
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = s.Refresh(ctx, ProviderGoogle)
	assert.ErrorIs(t, err, ErrNotConnected)

	tokens.tokens[ProviderGoogle] = models.OAuthToken{Provider: ProviderGoogle, AccessToken: "x"}
	_, err = s.Refresh(ctx, ProviderGoogle)
	assert.ErrorIs(t, err, ErrNoRefreshToken)

	tokens.tokens[ProviderGoogle] = models.OAuthToken{Provider: ProviderGoogle, RefreshToken: "revoked"}
	_, err = s.Refresh(ctx, ProviderGoogle)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestStatus(t *testing.T) {
	tokens := newMemTokens()
	s := newStore(t, tokens, "http://127.0.0.1:0/token")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	st, err := s.Status(ctx, ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, Status{Provider: ProviderGoogle, Configured: true}, st)

	tokens.tokens[ProviderGoogle] = models.OAuthToken{
		Provider: ProviderGoogle,
		Expiry:   now.Add(-time.Minute),
	}
	st, err = s.Status(ctx, ProviderGoogle)
	require.NoError(t, err)
	assert.True(t, st.Connected)
	assert.True(t, st.Expired)
	require.NotNil(t, st.Expiry)
}

func TestDisconnect(t *testing.T) {
	tokens := newMemTokens()
	s := newStore(t, tokens, "http://127.0.0.1:0/token")
	ctx := context.Background()

	require.NoError(t, s.SaveToken(ctx, ProviderGoogle, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.Disconnect(ctx, ProviderGoogle))

	st, err := s.Status(ctx, ProviderGoogle)
	require.NoError(t, err)
	assert.False(t, st.Connected)

	assert.ErrorIs(t, s.Disconnect(ctx, ProviderGoogle), ErrNotConnected)
}

func TestProviders_Unconfigured(t *testing.T) {
	s := New(newMemTokens(), errMissing, &config.Config{}, nil)
	assert.Empty(t, s.Providers())

	err := s.SaveToken(context.Background(), ProviderGoogle, &oauth2.Token{AccessToken: "x"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
