package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"solardash/internal/models"
)

// GetOAuthToken retrieves the stored token for a provider.
func (d *DB) GetOAuthToken(ctx context.Context, provider string) (*models.OAuthToken, error) {
	query := `
		SELECT provider, access_token, refresh_token, token_type, expiry, updated_at
		FROM solar_oauth_tokens
		WHERE provider = $1
	`

	var tok models.OAuthToken
	var expiry *time.Time
	err := d.Pool.QueryRow(ctx, query, provider).Scan(
		&tok.Provider, &tok.AccessToken, &tok.RefreshToken, &tok.TokenType, &expiry, &tok.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	if expiry != nil {
		tok.Expiry = *expiry
	}
	return &tok, nil
}

// SaveOAuthToken creates or replaces the token for a provider. An empty
// refresh token keeps the stored one, since providers often omit it on refresh.
func (d *DB) SaveOAuthToken(ctx context.Context, tok *models.OAuthToken) error {
	var expiry *time.Time
	if !tok.Expiry.IsZero() {
		expiry = &tok.Expiry
	}

	query := `
		INSERT INTO solar_oauth_tokens (provider, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (provider) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), solar_oauth_tokens.refresh_token),
			token_type = EXCLUDED.token_type,
			expiry = EXCLUDED.expiry,
			updated_at = NOW()
		RETURNING refresh_token, updated_at
	`
	return d.Pool.QueryRow(ctx, query,
		tok.Provider, tok.AccessToken, tok.RefreshToken, tok.TokenType, expiry,
	).Scan(&tok.RefreshToken, &tok.UpdatedAt)
}

// DeleteOAuthToken removes a provider's token.
func (d *DB) DeleteOAuthToken(ctx context.Context, provider string) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM solar_oauth_tokens WHERE provider = $1`, provider)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}
