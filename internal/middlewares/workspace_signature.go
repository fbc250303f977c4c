package middlewares

import (
	"github.com/dropspace/dropspace/internal/auth"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

// WorkspaceKeyProvider resolves the signing public key registered for a
// workspace.
type WorkspaceKeyProvider interface {
	WorkspacePublicKey(workspaceID string) (string, error)
}

// StaticWorkspaceKeys serves keys from configuration, keyed by
// workspace id.
type StaticWorkspaceKeys map[string]string

func (k StaticWorkspaceKeys) WorkspacePublicKey(workspaceID string) (string, error) {
	key, ok := k[workspaceID]
	if !ok {
		return "", fiber.NewError(fiber.StatusUnauthorized, "no API key registered for workspace")
	}
	return key, nil
}

// WorkspaceSignature authenticates workspace-scoped requests with the
// ed25519 signature headers. Upload endpoints stay public; only the
// owner-facing tree and folder API sits behind this.
func WorkspaceSignature(keys WorkspaceKeyProvider) fiber.Handler {
	return func(c fiber.Ctx) error {
		workspaceID := c.Params("workspaceID")
		if workspaceID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "workspace id required for signature verification")
		}

		publicKey, err := keys.WorkspacePublicKey(workspaceID)
		if err != nil {
			log.Warn().
				Str("workspace_id", workspaceID).
				Str("path", c.Path()).
				Msg("Rejected request for workspace without a registered key")
			return fiber.NewError(fiber.StatusUnauthorized, "unknown workspace or missing API key")
		}

		verifier, err := auth.NewRequestVerifier(publicKey)
		if err != nil {
			log.Error().Err(err).
				Str("workspace_id", workspaceID).
				Msg("Registered workspace key is unusable")
			return fiber.NewError(fiber.StatusInternalServerError, "failed to initialize signature verification")
		}

		err = verifier.VerifyRequest(
			c.Method(),
			c.Path(),
			c.Get(auth.SignatureHeader),
			c.Get(auth.TimestampHeader),
			c.Body(),
		)
		if err != nil {
			log.Warn().Err(err).
				Str("workspace_id", workspaceID).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("API signature verification failed")
			return fiber.NewError(fiber.StatusUnauthorized, "invalid API signature")
		}

		return c.Next()
	}
}
