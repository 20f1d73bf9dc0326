package api

import (
	"github.com/gofiber/fiber/v3"

	"solardash/internal/credentials"
)

// CredentialsHandler reports and refreshes provider tokens.
type CredentialsHandler struct {
	store *credentials.Store
}

// NewCredentialsHandler creates a new credentials handler.
func NewCredentialsHandler(store *credentials.Store) *CredentialsHandler {
	return &CredentialsHandler{store: store}
}

// Status reports whether :provider is configured and connected.
func (h *CredentialsHandler) Status(c fiber.Ctx) error {
	st, err := h.store.Status(c.Context(), c.Params("provider"))
	if err != nil {
		return failure(c, err, "failed to load credentials")
	}
	return jsonSuccess(c, st)
}

// Disconnect removes the stored token for :provider.
func (h *CredentialsHandler) Disconnect(c fiber.Ctx) error {
	provider := c.Params("provider")
	ctx := c.Context()
	if err := h.store.Disconnect(ctx, provider); err != nil {
		return failure(c, err, "failed to disconnect credentials")
	}
	st, err := h.store.Status(ctx, provider)
	if err != nil {
		return failure(c, err, "failed to load credentials")
	}
	return jsonSuccess(c, st)
}

// Refresh forces a token refresh for :provider.
func (h *CredentialsHandler) Refresh(c fiber.Ctx) error {
	provider := c.Params("provider")
	ctx := c.Context()
	if _, err := h.store.Refresh(ctx, provider); err != nil {
		return failure(c, err, "failed to refresh credentials")
	}
	st, err := h.store.Status(ctx, provider)
	if err != nil {
		return failure(c, err, "failed to load credentials")
	}
	return jsonSuccess(c, st)
}
