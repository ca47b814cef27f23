package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/rs/zerolog"

	"golists/internal/models"
)

// SessionUserKey is the session key holding the authenticated user's subject.
const SessionUserKey = "user_sub"

// UserStore resolves and registers users. *db.DB implements it.
type UserStore interface {
	GetUserBySub(ctx context.Context, sub string) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) error
}

// AuthMiddleware resolves the current user from the session, or from a
// trusted header set by a TLS-terminating proxy when one is configured.
type AuthMiddleware struct {
	users          UserStore
	identityHeader string
	log            zerolog.Logger
}

// NewAuthMiddleware creates a new auth middleware instance. An empty
// identityHeader disables header identity.
func NewAuthMiddleware(users UserStore, identityHeader string, log zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{users: users, identityHeader: identityHeader, log: log}
}

// RequireAuth ensures the user is authenticated, answering 401 if not.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	user := m.resolve(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "error",
			"error":  "unauthorized",
		})
	}

	c.Locals("user", user)
	return c.Next()
}

// OptionalAuth loads the user if authenticated, but doesn't require authentication.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	if user := m.resolve(c); user != nil {
		c.Locals("user", user)
	}
	return c.Next()
}

func (m *AuthMiddleware) resolve(c fiber.Ctx) *models.User {
	if user := m.fromSession(c); user != nil {
		return user
	}
	return m.fromHeader(c)
}

func (m *AuthMiddleware) fromSession(c fiber.Ctx) *models.User {
	sess := session.FromContext(c)
	if sess == nil {
		return nil
	}

	sub, ok := sess.Get(SessionUserKey).(string)
	if !ok || sub == "" {
		return nil
	}

	user, err := m.users.GetUserBySub(c.Context(), sub)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			_ = sess.Destroy()
		} else {
			m.log.Error().Err(err).Msg("session user lookup failed")
		}
		return nil
	}
	return user
}

// fromHeader maps a certificate CN such as "Jane Doe (jdoe)" to the user
// "jdoe", registering the user on first sight.
func (m *AuthMiddleware) fromHeader(c fiber.Ctx) *models.User {
	if m.identityHeader == "" {
		return nil
	}

	cn := c.Get(m.identityHeader)
	username := extractUsernameFromCN(cn)
	if username == "" {
		return nil
	}

	sub := "cn:" + username
	user, err := m.users.GetUserBySub(c.Context(), sub)
	if err == nil {
		return user
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		m.log.Error().Err(err).Str("username", username).Msg("header user lookup failed")
		return nil
	}

	user = &models.User{
		Sub:      sub,
		Username: username,
		Name:     strings.TrimSpace(cn[:strings.LastIndex(cn, "(")]),
		Role:     models.RoleUser,
	}
	if err := m.users.UpsertUser(c.Context(), user); err != nil {
		m.log.Error().Err(err).Str("username", username).Msg("failed to register header user")
		return nil
	}
	m.log.Info().Str("username", username).Msg("registered user from identity header")
	return user
}

// extractUsernameFromCN returns the username in the trailing parentheses of
// a CN like "Heath Taylor (heatht)", or "" when the CN has no such suffix.
func extractUsernameFromCN(cn string) string {
	cn = strings.TrimSpace(cn)
	if !strings.HasSuffix(cn, ")") {
		return ""
	}

	open := strings.LastIndex(cn, "(")
	if open < 0 {
		return ""
	}

	inner := cn[open+1 : len(cn)-1]
	if strings.ContainsAny(inner, "()") {
		return ""
	}
	return strings.TrimSpace(inner)
}
