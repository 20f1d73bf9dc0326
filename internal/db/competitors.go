package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"solardash/internal/models"
)

const competitorColumns = `id, domain, name, location, business_type, manual, updated_at`

// UpsertCompetitor inserts a competitor or, when the id exists, overwrites its
// name, location and classification. The manual flag is sticky.
func (d *DB) UpsertCompetitor(ctx context.Context, c *models.Competitor) error {
	query := `
		INSERT INTO solar_competitors (id, domain, name, location, business_type, manual, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE SET
			domain = EXCLUDED.domain,
			name = EXCLUDED.name,
			location = EXCLUDED.location,
			business_type = EXCLUDED.business_type,
			manual = solar_competitors.manual OR EXCLUDED.manual,
			updated_at = NOW()
		RETURNING manual, updated_at
	`

	err := d.Pool.QueryRow(ctx, query,
		c.ID, c.Domain, c.Name, c.Location, c.BusinessType, c.Manual,
	).Scan(&c.Manual, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCompetitor
		}
		return err
	}
	return nil
}

// ListCompetitors returns all competitors ordered by name.
func (d *DB) ListCompetitors(ctx context.Context) ([]models.Competitor, error) {
	rows, err := d.Pool.Query(ctx, `SELECT `+competitorColumns+` FROM solar_competitors ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var competitors []models.Competitor
	for rows.Next() {
		var c models.Competitor
		if err := rows.Scan(&c.ID, &c.Domain, &c.Name, &c.Location, &c.BusinessType, &c.Manual, &c.UpdatedAt); err != nil {
			return nil, err
		}
		competitors = append(competitors, c)
	}
	return competitors, rows.Err()
}

// DeleteCompetitor removes a competitor and, by cascade, its rankings.
func (d *DB) DeleteCompetitor(ctx context.Context, id string) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM solar_competitors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCompetitorNotFound
	}
	return nil
}

// CountCompetitorsByType returns the number of competitors per business type.
func (d *DB) CountCompetitorsByType(ctx context.Context) (map[string]int, error) {
	rows, err := d.Pool.Query(ctx, `SELECT business_type, COUNT(*) FROM solar_competitors GROUP BY business_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var businessType string
		var n int
		if err := rows.Scan(&businessType, &n); err != nil {
			return nil, err
		}
		counts[businessType] = n
	}
	return counts, rows.Err()
}
