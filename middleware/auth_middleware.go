package middleware

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"folio/api/apperr"
	"folio/api/models"
	"folio/api/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Context keys set by AdminRequired.
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
)

const (
	TokenCookie  = "jwt_token"
	APIKeyHeader = "X-API-KEY"
)

// AdminRequired admits requests carrying the configured admin API key or a
// valid JWT with the admin role. An empty apiKey disables key access.
func AdminRequired(tokens *utils.TokenIssuer, apiKey string, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader(APIKeyHeader); apiKey != "" && key != "" {
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
				c.Set(ContextUserRole, models.RoleAdmin)
				c.Next()
				return
			}
			log.WithField("ip", c.ClientIP()).Warn("AdminRequired: invalid API key")
			abort(c, fmt.Errorf("%w: invalid API key", apperr.ErrUnauthorized), "Unauthorized: Invalid API key")
			return
		}

		tokenString := bearerOrCookie(c)
		if tokenString == "" {
			abort(c, fmt.Errorf("%w: no token", apperr.ErrUnauthorized), "Unauthorized: No token provided")
			return
		}

		claims, err := tokens.ValidateJWT(tokenString)
		if err != nil {
			log.WithError(err).Debug("AdminRequired: rejected token")
			abort(c, fmt.Errorf("%w: %w", apperr.ErrUnauthorized, err), "Unauthorized: Invalid or expired token")
			return
		}
		if claims.Role != models.RoleAdmin {
			log.WithField("user_id", claims.UserID).Warn("AdminRequired: user is not an admin")
			abort(c, fmt.Errorf("%w: role %q", apperr.ErrForbidden, claims.Role), "Forbidden")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

func bearerOrCookie(c *gin.Context) string {
	if token, err := c.Cookie(TokenCookie); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// UserID returns the authenticated admin's id. It is absent for API key
// access.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
