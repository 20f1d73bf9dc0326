package api

import (
	"context"

	"solardash/internal/models"
)

// BusinessConfigStore reads and writes business config revisions.
type BusinessConfigStore interface {
	GetCurrentBusinessConfig(ctx context.Context) (*models.BusinessConfig, error)
	InsertBusinessConfig(ctx context.Context, cfg *models.BusinessConfig) error
}

// CompetitorStore is the competitor side of the database.
type CompetitorStore interface {
	GetCurrentBusinessConfig(ctx context.Context) (*models.BusinessConfig, error)
	ListCompetitors(ctx context.Context) ([]models.Competitor, error)
	ListCompetitorRankings(ctx context.Context) ([]models.CompetitorRanking, error)
	ListPreviousCompetitorRankings(ctx context.Context) ([]models.CompetitorRanking, error)
	DeleteCompetitor(ctx context.Context, id string) error
}

// RankingStore records and aggregates the business's keyword rankings.
type RankingStore interface {
	GetCurrentBusinessConfig(ctx context.Context) (*models.BusinessConfig, error)
	GetOrCreateLocation(ctx context.Context, name string) (*models.ServiceArea, error)
	GetLocationByName(ctx context.Context, name string) (*models.ServiceArea, error)
	ListLocations(ctx context.Context) ([]models.ServiceArea, error)
	UpdateLocationScore(ctx context.Context, name string, score int) error
	InsertKeywordRanking(ctx context.Context, r *models.KeywordRanking) error
	GetCurrentKeywordRankings(ctx context.Context, windowDays int) ([]models.CurrentKeywordRanking, error)
	GetKeywordRankingHistory(ctx context.Context, area, keyword string, limit int) ([]models.KeywordRanking, error)
}
