package db

import (
	"errors"

	"solardash/internal/models"
)

// Domain-level database error sentinels.
var (
	// Competitor errors
	ErrCompetitorNotFound  = errors.New("competitor not found")
	ErrDuplicateCompetitor = errors.New("competitor domain already exists")

	// Location errors
	ErrLocationNotFound = errors.New("location not found")

	// Business config errors
	ErrBusinessConfigNotFound = models.ErrNoBusinessConfig

	// OAuth token errors
	ErrTokenNotFound = errors.New("oauth token not found")

	// ErrNoSchema means migrations have not been applied.
	ErrNoSchema = errors.New("schema not migrated")
)
