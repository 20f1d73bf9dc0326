package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"solardash/internal/models"
)

type coordinates struct {
	lat, lng float64
}

// cityCoordinates geocodes the service areas the business is likely to use.
var cityCoordinates = map[string]coordinates{
	"round rock, tx":   {30.5083, -97.6789},
	"austin, tx":       {30.2672, -97.7431},
	"georgetown, tx":   {30.6333, -97.6770},
	"cedar park, tx":   {30.5052, -97.8203},
	"pflugerville, tx": {30.4394, -97.6200},
	"leander, tx":      {30.5788, -97.8531},
	"hutto, tx":        {30.5427, -97.5467},
	"san marcos, tx":   {29.8833, -97.9414},
	"san antonio, tx":  {29.4241, -98.4936},
	"houston, tx":      {29.7604, -95.3698},
	"dallas, tx":       {32.7767, -96.7970},
	"fort worth, tx":   {32.7555, -97.3308},
	"phoenix, az":      {33.4484, -112.0740},
	"tucson, az":       {32.2226, -110.9747},
	"los angeles, ca":  {34.0522, -118.2437},
	"san diego, ca":    {32.7157, -117.1611},
	"sacramento, ca":   {38.5816, -121.4944},
	"las vegas, nv":    {36.1699, -115.1398},
	"denver, co":       {39.7392, -104.9903},
	"tampa, fl":        {27.9506, -82.4572},
	"orlando, fl":      {28.5383, -81.3792},
}

// Coordinates returns the latitude and longitude of a "City, ST" area, or
// (0, 0) for unknown areas.
func Coordinates(area string) (float64, float64) {
	c := cityCoordinates[strings.ToLower(strings.TrimSpace(area))]
	return c.lat, c.lng
}

// GetOrCreateLocation returns the location named name, creating it with
// coordinates from the city table when missing. Concurrent callers receive
// the same row.
func (d *DB) GetOrCreateLocation(ctx context.Context, name string) (*models.ServiceArea, error) {
	lat, lng := Coordinates(name)

	query := `
		INSERT INTO solar_locations (name, latitude, longitude)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, latitude, longitude, overall_score, created_at
	`

	var loc models.ServiceArea
	err := d.Pool.QueryRow(ctx, query, name, lat, lng).Scan(
		&loc.ID, &loc.Name, &loc.Latitude, &loc.Longitude, &loc.OverallScore, &loc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// GetLocationByName retrieves a location by exact name.
func (d *DB) GetLocationByName(ctx context.Context, name string) (*models.ServiceArea, error) {
	query := `
		SELECT id, name, latitude, longitude, overall_score, created_at
		FROM solar_locations
		WHERE name = $1
	`

	var loc models.ServiceArea
	err := d.Pool.QueryRow(ctx, query, name).Scan(
		&loc.ID, &loc.Name, &loc.Latitude, &loc.Longitude, &loc.OverallScore, &loc.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// ListLocations returns all locations ordered by name.
func (d *DB) ListLocations(ctx context.Context) ([]models.ServiceArea, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, name, latitude, longitude, overall_score, created_at
		FROM solar_locations
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []models.ServiceArea
	for rows.Next() {
		var loc models.ServiceArea
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Latitude, &loc.Longitude, &loc.OverallScore, &loc.CreatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// UpdateLocationScore sets the overall score of a location.
func (d *DB) UpdateLocationScore(ctx context.Context, name string, score int) error {
	tag, err := d.Pool.Exec(ctx, `UPDATE solar_locations SET overall_score = $1 WHERE name = $2`, score, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLocationNotFound
	}
	return nil
}
