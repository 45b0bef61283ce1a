package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/memo/internal/apperr"
	"github.com/Nixie-Tech-LLC/memo/internal/auth"
	"github.com/Nixie-Tech-LLC/memo/internal/http/respond"
	"github.com/Nixie-Tech-LLC/memo/internal/model"
)

// RequireRole checks "Authorization: Bearer <token>", decodes it and, when role is
// ADMIN, rejects non-admin identities. On success the identity is attached to the
// request context before the rest of the chain runs.
func RequireRole(codec *auth.TokenCodec, role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			respond.Abort(c, apperr.Unauthenticated("authentication required"))
			return
		}

		id, err := decodeHeader(codec, header)
		if err != nil {
			log.Debug().Err(err).Str("path", c.FullPath()).Msg("token rejected")
			respond.Abort(c, err)
			return
		}

		if role == model.RoleAdmin && !id.IsAdmin() {
			respond.Abort(c, apperr.Forbidden("admin role required"))
			return
		}

		setIdentity(c, id)
		c.Next()
	}
}

// OptionalIdentity resolves an identity when a token is sent and lets anonymous
// requests through. A token that is present but bad is still rejected.
func OptionalIdentity(codec *auth.TokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		id, err := decodeHeader(codec, header)
		if err != nil {
			respond.Abort(c, err)
			return
		}
		setIdentity(c, id)
		c.Next()
	}
}

func decodeHeader(codec *auth.TokenCodec, header string) (auth.Identity, error) {
	raw, err := auth.StripPrefix(header)
	if err != nil {
		return auth.Identity{}, apperr.Unauthenticated("authentication required")
	}

	id, err := codec.Decode(raw)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, auth.ErrTokenExpired):
		return auth.Identity{}, apperr.InvalidToken("token expired")
	case errors.Is(err, auth.ErrTokenUnsupported):
		return auth.Identity{}, apperr.New(apperr.TokenMalformed, "unsupported token")
	default:
		return auth.Identity{}, apperr.InvalidToken("invalid token")
	}
}

func setIdentity(c *gin.Context, id auth.Identity) {
	c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
	c.Set(identityKey, id)
}
