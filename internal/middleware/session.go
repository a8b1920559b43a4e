package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/utils"
)

const sessionContextKey = "currentSession"

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "session_token"

// SessionMiddleware resolves the request's server-side session, if any.
// The token is read from the session cookie or an Authorization: Bearer
// header. An invalid token or a missing session row is treated as no
// session; a session whose user row no longer exists is downgraded to
// guest and the stale marker cleared.
func SessionMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			if header := c.Get("Authorization"); header != "" {
				parts := strings.SplitN(header, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					token = parts[1]
				}
			}
		}
		if token == "" {
			return c.Next()
		}

		sessionID, err := utils.ParseSessionToken(cfg.SessionSecret, token)
		if err != nil {
			return c.Next()
		}

		var sess models.Session
		if err := db.First(&sess, "id = ?", sessionID).Error; err != nil {
			return c.Next()
		}

		if sess.UserID != nil {
			var count int64
			if err := db.Model(&models.User{}).Where("id = ?", *sess.UserID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				if err := db.Model(&models.Session{}).Where("id = ?", sess.ID).
					Update("user_id", nil).Error; err != nil {
					return err
				}
				sess.UserID = nil
			}
		}

		c.Locals(sessionContextKey, &sess)
		return c.Next()
	}
}

// CurrentSession extracts the resolved session from context.
func CurrentSession(c *fiber.Ctx) (*models.Session, bool) {
	sess, ok := c.Locals(sessionContextKey).(*models.Session)
	return sess, ok
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	sess, ok := CurrentSession(c)
	if !ok || sess.UserID == nil {
		return uuid.Nil, false
	}
	return *sess.UserID, true
}

// RequireAuth guards endpoints that need an authenticated user.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUserID(c); !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "not authenticated")
		}
		return c.Next()
	}
}

// EnsureSession returns the request's session, creating a guest session row
// and setting the cookie lazily on first use.
func EnsureSession(c *fiber.Ctx, db *gorm.DB, cfg *config.Config) (*models.Session, error) {
	if sess, ok := CurrentSession(c); ok {
		return sess, nil
	}

	sess := &models.Session{}
	if err := db.Create(sess).Error; err != nil {
		return nil, err
	}

	token, err := utils.GenerateSessionToken(cfg.SessionSecret, sess.ID, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(cfg.SessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	c.Locals(sessionContextKey, sess)
	return sess, nil
}

// ClearSession deletes the session row and expires the cookie.
func ClearSession(c *fiber.Ctx, db *gorm.DB) error {
	if sess, ok := CurrentSession(c); ok {
		if err := db.Delete(&models.Session{}, "id = ?", sess.ID).Error; err != nil {
			return err
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals(sessionContextKey, nil)
	return nil
}
