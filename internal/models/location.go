package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceArea is a "City, ST" market the business serves.
type ServiceArea struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	OverallScore *int      `json:"overallScore,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
