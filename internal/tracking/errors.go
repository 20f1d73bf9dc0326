package tracking

import (
	"errors"

	"solardash/internal/models"
)

var (
	// ErrNoBusinessConfig is returned when tracking is requested before any
	// business config has been saved.
	ErrNoBusinessConfig = models.ErrNoBusinessConfig

	// ErrNoServiceAreas is returned when the business config lists no service areas.
	ErrNoServiceAreas = errors.New("business config has no service areas")

	// ErrNoKeywords is returned when a tracking pass has nothing to search for.
	ErrNoKeywords = errors.New("no keywords configured for area")
)
