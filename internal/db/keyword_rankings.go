package db

import (
	"context"
	"math"

	"solardash/internal/models"
)

// InsertKeywordRanking appends a ranking observation. Rows are never updated.
func (d *DB) InsertKeywordRanking(ctx context.Context, r *models.KeywordRanking) error {
	query := `
		INSERT INTO solar_keyword_rankings (location_id, keyword, position, clicks, impressions, ctr)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, checked_at
	`
	return d.Pool.QueryRow(ctx, query,
		r.LocationID, r.Keyword, r.Position, r.Clicks, r.Impressions, r.CTR,
	).Scan(&r.ID, &r.CheckedAt)
}

// GetCurrentKeywordRankings aggregates observations from the last windowDays
// days per area and keyword. The average position ignores unranked checks and
// is nil when none ranked.
func (d *DB) GetCurrentKeywordRankings(ctx context.Context, windowDays int) ([]models.CurrentKeywordRanking, error) {
	query := `
		SELECT l.name, r.keyword,
		       AVG(r.position)::float8,
		       COALESCE(SUM(r.clicks), 0)::bigint,
		       COALESCE(SUM(r.impressions), 0)::bigint,
		       COUNT(*),
		       MAX(r.checked_at)
		FROM solar_keyword_rankings r
		JOIN solar_locations l ON l.id = r.location_id
		WHERE r.checked_at >= NOW() - make_interval(days => $1::int)
		GROUP BY l.name, r.keyword
		ORDER BY l.name, r.keyword
	`

	rows, err := d.Pool.Query(ctx, query, windowDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CurrentKeywordRanking
	for rows.Next() {
		var c models.CurrentKeywordRanking
		if err := rows.Scan(&c.Area, &c.Keyword, &c.AveragePosition, &c.Clicks, &c.Impressions, &c.Checks, &c.LastCheckedAt); err != nil {
			return nil, err
		}
		if c.AveragePosition != nil {
			avg := math.Round(*c.AveragePosition*10) / 10
			c.AveragePosition = &avg
		}
		if c.Impressions > 0 {
			c.CTR = math.Round(float64(c.Clicks)/float64(c.Impressions)*1000) / 10
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetKeywordRankingHistory returns the observations for one area and keyword,
// newest first.
func (d *DB) GetKeywordRankingHistory(ctx context.Context, area, keyword string, limit int) ([]models.KeywordRanking, error) {
	query := `
		SELECT r.id, r.location_id, r.keyword, r.position, r.clicks, r.impressions, r.ctr, r.checked_at
		FROM solar_keyword_rankings r
		JOIN solar_locations l ON l.id = r.location_id
		WHERE l.name = $1 AND r.keyword = $2
		ORDER BY r.checked_at DESC
		LIMIT $3
	`

	rows, err := d.Pool.Query(ctx, query, area, keyword, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.KeywordRanking
	for rows.Next() {
		var r models.KeywordRanking
		if err := rows.Scan(&r.ID, &r.LocationID, &r.Keyword, &r.Position, &r.Clicks, &r.Impressions, &r.CTR, &r.CheckedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
