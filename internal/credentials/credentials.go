// Package credentials keeps OAuth tokens for external data providers and
// refreshes them through golang.org/x/oauth2.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/oauth2"

	"solardash/internal/config"
	"solardash/internal/models"
)

// ProviderGoogle is the Search Console provider key.
const ProviderGoogle = "google"

var (
	ErrUnknownProvider = errors.New("unknown credential provider")
	ErrNotConnected    = errors.New("provider not connected")
	ErrNoRefreshToken  = errors.New("no refresh token stored")
)

// TokenStore persists tokens. It returns notFound for a missing provider.
type TokenStore interface {
	GetOAuthToken(ctx context.Context, provider string) (*models.OAuthToken, error)
	SaveOAuthToken(ctx context.Context, tok *models.OAuthToken) error
	DeleteOAuthToken(ctx context.Context, provider string) error
}

// Status describes a provider connection without exposing secrets.
type Status struct {
	Provider   string     `json:"provider"`
	Configured bool       `json:"configured"`
	Connected  bool       `json:"connected"`
	Expiry     *time.Time `json:"expiry,omitempty"`
	Expired    bool       `json:"expired"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// Store resolves provider tokens.
type Store struct {
	tokens    TokenStore
	notFound  error
	providers map[string]*oauth2.Config
	now       func() time.Time
	logger    *slog.Logger
}

// New creates a Store. notFound is the error the token store returns for a
// missing provider.
func New(tokens TokenStore, notFound error, cfg *config.Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		tokens:    tokens,
		notFound:  notFound,
		providers: make(map[string]*oauth2.Config),
		now:       time.Now,
		logger:    logger,
	}
	if cfg.IsOAuthConfigured() {
		s.providers[ProviderGoogle] = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.GoogleTokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: []string{"https://www.googleapis.com/auth/webmasters.readonly"},
		}
	}
	return s
}

// Providers lists the configured provider keys.
func (s *Store) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) provider(name string) (*oauth2.Config, error) {
	p, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

// SaveToken stores a token obtained out of band.
func (s *Store) SaveToken(ctx context.Context, provider string, tok *oauth2.Token) error {
	if _, err := s.provider(provider); err != nil {
		return err
	}
	return s.tokens.SaveOAuthToken(ctx, fromOAuth2(provider, tok))
}

// Token returns a valid access token for provider, refreshing and persisting
// it when expired.
func (s *Store) Token(ctx context.Context, provider string) (*oauth2.Token, error) {
	p, err := s.provider(provider)
	if err != nil {
		return nil, err
	}
	stored, err := s.load(ctx, provider)
	if err != nil {
		return nil, err
	}
	tok := toOAuth2(stored)
	if tok.Valid() {
		return tok, nil
	}
	return s.refresh(ctx, p, provider, tok)
}

// Refresh forces a token refresh for provider.
func (s *Store) Refresh(ctx context.Context, provider string) (*oauth2.Token, error) {
	p, err := s.provider(provider)
	if err != nil {
		return nil, err
	}
	stored, err := s.load(ctx, provider)
	if err != nil {
		return nil, err
	}
	tok := toOAuth2(stored)
	// An empty access token makes the token source refresh.
	tok.AccessToken = ""
	return s.refresh(ctx, p, provider, tok)
}

func (s *Store) refresh(ctx context.Context, p *oauth2.Config, provider string, tok *oauth2.Token) (*oauth2.Token, error) {
	if tok.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	fresh, err := p.TokenSource(ctx, tok).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh %s token: %w", provider, err)
	}
	if err := s.tokens.SaveOAuthToken(ctx, fromOAuth2(provider, fresh)); err != nil {
		return nil, fmt.Errorf("save %s token: %w", provider, err)
	}
	s.logger.Info("oauth token refreshed", "provider", provider, "expiry", fresh.Expiry)
	return fresh, nil
}

// Status reports the connection state of provider.
func (s *Store) Status(ctx context.Context, provider string) (Status, error) {
	st := Status{Provider: provider}
	_, err := s.provider(provider)
	st.Configured = err == nil

	stored, err := s.load(ctx, provider)
	if errors.Is(err, ErrNotConnected) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	st.Connected = true
	if !stored.Expiry.IsZero() {
		expiry := stored.Expiry
		st.Expiry = &expiry
		st.Expired = !expiry.After(s.now())
	}
	updated := stored.UpdatedAt
	st.UpdatedAt = &updated
	return st, nil
}

// Disconnect forgets the stored token for provider. Providers that are no
// longer configured can still be disconnected.
func (s *Store) Disconnect(ctx context.Context, provider string) error {
	err := s.tokens.DeleteOAuthToken(ctx, provider)
	if s.notFound != nil && errors.Is(err, s.notFound) {
		return fmt.Errorf("%w: %s", ErrNotConnected, provider)
	}
	if err != nil {
		return fmt.Errorf("delete %s token: %w", provider, err)
	}
	s.logger.Info("credentials disconnected", "provider", provider)
	return nil
}

func (s *Store) load(ctx context.Context, provider string) (*models.OAuthToken, error) {
	stored, err := s.tokens.GetOAuthToken(ctx, provider)
	if s.notFound != nil && errors.Is(err, s.notFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, provider)
	}
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func toOAuth2(t *models.OAuthToken) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}

func fromOAuth2(provider string, t *oauth2.Token) *models.OAuthToken {
	return &models.OAuthToken{
		Provider:     provider,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.Type(),
		Expiry:       t.Expiry,
	}
}
