package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solardash/internal/models"
)

// ReplaceCompetitorRankings swaps the rankings the given competitors hold in
// location for rows, in one transaction. The rankings being replaced are
// copied into the history table first so the next read can compare against
// them. Rankings in other locations and of other competitors are untouched.
func (d *DB) ReplaceCompetitorRankings(ctx context.Context, location string, competitorIDs []string, rows []models.CompetitorRanking) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Keep the previous snapshot only where a current one exists; a first run
	// in this location leaves the older history in place.
	_, err = tx.Exec(ctx, `
		DELETE FROM solar_competitor_ranking_history h
		WHERE h.location = $2
		  AND h.competitor_id = ANY($1)
		  AND EXISTS (
			SELECT 1 FROM solar_competitor_rankings r
			WHERE r.competitor_id = h.competitor_id AND r.location = $2
		  )
	`, competitorIDs, location)
	if err != nil {
		return fmt.Errorf("clear ranking history: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO solar_competitor_ranking_history
			(competitor_id, keyword, position, url, title, estimated_traffic, location, checked_at)
		SELECT competitor_id, keyword, position, url, title, estimated_traffic, location, checked_at
		FROM solar_competitor_rankings
		WHERE competitor_id = ANY($1) AND location = $2
	`, competitorIDs, location)
	if err != nil {
		return fmt.Errorf("snapshot rankings: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM solar_competitor_rankings WHERE competitor_id = ANY($1) AND location = $2`, competitorIDs, location)
	if err != nil {
		return fmt.Errorf("delete rankings: %w", err)
	}

	if len(rows) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"solar_competitor_rankings"},
			[]string{"competitor_id", "keyword", "position", "url", "title", "estimated_traffic", "location", "checked_at"},
			pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
				r := rows[i]
				return []any{r.CompetitorID, r.Keyword, r.Position, r.URL, r.Title, r.EstimatedTraffic, r.Location, r.CheckedAt}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("insert rankings: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ListCompetitorRankings returns the current rankings of all competitors.
func (d *DB) ListCompetitorRankings(ctx context.Context) ([]models.CompetitorRanking, error) {
	return d.listRankings(ctx, "solar_competitor_rankings")
}

// ListPreviousCompetitorRankings returns the snapshot each competitor's
// current rankings replaced.
func (d *DB) ListPreviousCompetitorRankings(ctx context.Context) ([]models.CompetitorRanking, error) {
	return d.listRankings(ctx, "solar_competitor_ranking_history")
}

func (d *DB) listRankings(ctx context.Context, table string) ([]models.CompetitorRanking, error) {
	query := `
		SELECT competitor_id, keyword, position, url, title, estimated_traffic, location, checked_at
		FROM ` + table + `
		ORDER BY competitor_id, location, keyword
	`

	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CompetitorRanking
	for rows.Next() {
		var r models.CompetitorRanking
		if err := rows.Scan(&r.CompetitorID, &r.Keyword, &r.Position, &r.URL, &r.Title, &r.EstimatedTraffic, &r.Location, &r.CheckedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
