package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solardash/internal/models"
)

// InsertBusinessConfig stores a new business config revision. The newest
// revision is the current one.
func (d *DB) InsertBusinessConfig(ctx context.Context, cfg *models.BusinessConfig) error {
	keywords, err := json.Marshal(cfg.Keywords)
	if err != nil {
		return fmt.Errorf("encode target keywords: %w", err)
	}
	areas := cfg.ServiceAreas
	if areas == nil {
		areas = []string{}
	}

	query := `
		INSERT INTO solar_business_info (business_name, website, service_areas, target_keywords)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return d.Pool.QueryRow(ctx, query, cfg.BusinessName, cfg.Website, areas, keywords).Scan(&cfg.ID, &cfg.CreatedAt)
}

// GetCurrentBusinessConfig returns the most recently created revision.
// Stored keywords in either the legacy list form or the structured form are
// normalized to the structured form.
func (d *DB) GetCurrentBusinessConfig(ctx context.Context) (*models.BusinessConfig, error) {
	query := `
		SELECT id, business_name, website, service_areas, target_keywords, created_at
		FROM solar_business_info
		ORDER BY created_at DESC, id
		LIMIT 1
	`

	var cfg models.BusinessConfig
	var raw []byte
	err := d.Pool.QueryRow(ctx, query).Scan(
		&cfg.ID, &cfg.BusinessName, &cfg.Website, &cfg.ServiceAreas, &raw, &cfg.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBusinessConfigNotFound
	}
	if err != nil {
		return nil, err
	}

	cfg.Keywords, err = models.ParseKeywords(raw)
	if err != nil {
		return nil, fmt.Errorf("decode target keywords: %w", err)
	}
	return &cfg, nil
}

// SeedBusinessConfig inserts cfg only when no business config exists yet.
// It reports whether a row was inserted.
func (d *DB) SeedBusinessConfig(ctx context.Context, cfg *models.BusinessConfig) (bool, error) {
	keywords, err := json.Marshal(cfg.Keywords)
	if err != nil {
		return false, fmt.Errorf("encode target keywords: %w", err)
	}
	areas := cfg.ServiceAreas
	if areas == nil {
		areas = []string{}
	}

	query := `
		INSERT INTO solar_business_info (business_name, website, service_areas, target_keywords)
		SELECT $1::text, $2::text, $3::text[], $4::jsonb
		WHERE NOT EXISTS (SELECT 1 FROM solar_business_info)
		RETURNING id, created_at
	`
	err = d.Pool.QueryRow(ctx, query, cfg.BusinessName, cfg.Website, areas, keywords).Scan(&cfg.ID, &cfg.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
