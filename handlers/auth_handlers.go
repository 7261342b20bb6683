// api/handlers/auth_handlers.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"folio/api/apperr"
	"folio/api/middleware"
	"folio/api/models"
	"folio/api/utils"
)

type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthHandlers struct {
	Users        UserStore
	Tokens       *utils.TokenIssuer
	CookieSecure bool
	Log          logrus.FieldLogger
}

func NewAuthHandlers(users UserStore, tokens *utils.TokenIssuer, cookieSecure bool, log logrus.FieldLogger) *AuthHandlers {
	return &AuthHandlers{Users: users, Tokens: tokens, CookieSecure: cookieSecure, Log: log}
}

// Login checks the admin's password and issues a JWT, both as an HttpOnly
// cookie and in the response body.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
	defer cancel()

	user, err := h.Users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			writeError(c, h.Log, err, "Failed to log in")
			return
		}
		h.Log.WithField("email", req.Email).Info("login failed: unknown email")
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(req.Password)); err != nil {
		h.Log.WithField("email", req.Email).Info("login failed: password mismatch")
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid credentials"})
		return
	}

	tokenString, err := h.Tokens.GenerateJWT(user)
	if err != nil {
		writeError(c, h.Log, err, "Failed to generate authentication token")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.TokenCookie,
		tokenString,
		int(h.Tokens.TTL().Seconds()),
		"/",
		"",
		h.CookieSecure,
		true,
	)

	h.Log.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("user logged in")
	c.JSON(http.StatusOK, models.LoginResponse{
		Message:   "Login successful",
		UserEmail: user.Email,
		Token:     tokenString,
	})
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	// MaxAge -1 expires the cookie immediately.
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.TokenCookie,
		"",
		-1,
		"/",
		"",
		h.CookieSecure,
		true,
	)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
