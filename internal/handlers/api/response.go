package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"solardash/internal/credentials"
	"solardash/internal/db"
	"solardash/internal/discovery"
	"solardash/internal/jobs"
	"solardash/internal/tracking"
	"solardash/internal/validation"
)

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}

// failure maps err to a status and writes the error envelope. Unexpected
// errors are logged and reported without detail.
func failure(c fiber.Ctx, err error, fallbackMsg string) error {
	switch {
	case tracking.IsConfigError(err), errors.Is(err, discovery.ErrNoKeywords):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrCompetitorNotFound),
		errors.Is(err, db.ErrLocationNotFound),
		errors.Is(err, credentials.ErrUnknownProvider),
		errors.Is(err, credentials.ErrNotConnected):
		return jsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, credentials.ErrNoRefreshToken):
		return jsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, jobs.ErrBusy):
		return jsonError(c, fiber.StatusConflict, err.Error())
	}
	slog.Error(fallbackMsg, "path", c.Path(), "error", err)
	return jsonError(c, fiber.StatusInternalServerError, fallbackMsg)
}

// checkArea normalizes area and returns a message when it is invalid.
func checkArea(area string) (string, string) {
	area = validation.NormalizeArea(area)
	if ok, msg := validation.ValidateArea(area); !ok {
		return "", msg
	}
	return area, ""
}
