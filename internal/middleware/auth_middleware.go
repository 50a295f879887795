package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/recaatinga-api/internal/domain/entity"
	"github.com/yourusername/recaatinga-api/internal/domain/repository"
	"github.com/yourusername/recaatinga-api/pkg/auth"
)

// Cookie and context key names shared with the handlers.
const (
	SessionCookie = "session_id"
	TokenCookie   = "token"

	ContextUserID    = "user_id"
	ContextUserRole  = "user_role"
	ContextSessionID = "session_id"
)

// AuthMiddleware resolves the caller identity once per request. Two backends
// are tried in fixed priority order: the Redis session store first, then the
// JWT (cookie, then Authorization header). Both paths yield the same
// normalized identity in the Gin context, and a token-only hit
// opportunistically re-creates the server session.
type AuthMiddleware struct {
	jwtService *auth.JWTService
	sessions   repository.SessionStore
	userRepo   repository.UserRepository
	sessionTTL time.Duration
	secure     bool
}

// NewAuthMiddleware creates the auth middleware.
func NewAuthMiddleware(
	jwtService *auth.JWTService,
	sessions repository.SessionStore,
	userRepo repository.UserRepository,
	sessionTTL time.Duration,
	secure bool,
) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		sessions:   sessions,
		userRepo:   userRepo,
		sessionTTL: sessionTTL,
		secure:     secure,
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
	c.Abort()
}

// RequireAuth authenticates the request and stores the normalized identity
// (user ID and role) in the context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Server session, if the cookie is present and the session lives.
		if sessionID, err := c.Cookie(SessionCookie); err == nil && sessionID != "" {
			if session, err := m.sessions.Get(sessionID); err == nil {
				user, err := m.userRepo.GetByID(session.UserID)
				if err != nil || !user.Active {
					// Stale session for a deleted or deactivated account.
					if delErr := m.sessions.Delete(sessionID); delErr != nil {
						log.Printf("[Auth] failed to drop stale session %s: %v", sessionID, delErr)
					}
					abortUnauthorized(c, "Session expired")
					return
				}
				// Sliding expiry: an active session stays alive.
				if err := m.sessions.Refresh(sessionID, m.sessionTTL); err != nil {
					log.Printf("[Auth] failed to refresh session %s: %v", sessionID, err)
				}
				m.setIdentity(c, sessionID, user)
				c.Next()
				return
			}
		}

		// 2. Token fallback: cookie first, then Authorization header.
		token := m.extractToken(c)
		if token == "" {
			abortUnauthorized(c, "Authentication required")
			return
		}

		claims, err := m.jwtService.ParseToken(token)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		user, err := m.userRepo.GetByID(claims.UserID)
		if err != nil || !user.Active {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		// Opportunistic session refresh: a valid token re-establishes the
		// server session so subsequent requests take the cheap path.
		sessionID := m.startSession(c, user)
		m.setIdentity(c, sessionID, user)
		c.Next()
	}
}

// AdminOnly rejects callers without the admin role. Must run after RequireAuth.
func (m *AuthMiddleware) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextUserRole)
		if !exists || role.(string) != entity.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Access denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// StartSession creates a server session for the user and sets its cookie.
// Exposed for the auth handlers (login/register).
func (m *AuthMiddleware) StartSession(c *gin.Context, user *entity.User) string {
	return m.startSession(c, user)
}

// EndSession destroys the caller's session and clears both auth cookies.
func (m *AuthMiddleware) EndSession(c *gin.Context) error {
	var err error
	if sessionID, cerr := c.Cookie(SessionCookie); cerr == nil && sessionID != "" {
		err = m.sessions.Delete(sessionID)
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", m.secure, true)
	c.SetCookie(TokenCookie, "", -1, "/", "", m.secure, true)
	return err
}

func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	if token, err := c.Cookie(TokenCookie); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func (m *AuthMiddleware) startSession(c *gin.Context, user *entity.User) string {
	session := &entity.Session{
		ID:     uuid.NewString(),
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	}
	if err := m.sessions.Save(session, m.sessionTTL); err != nil {
		// Session store being down degrades to token-only auth, not failure.
		log.Printf("[Auth] failed to save session for user %d: %v", user.ID, err)
		return ""
	}
	c.SetCookie(SessionCookie, session.ID, int(m.sessionTTL.Seconds()), "/", "", m.secure, true)
	return session.ID
}

func (m *AuthMiddleware) setIdentity(c *gin.Context, sessionID string, user *entity.User) {
	c.Set(ContextUserID, user.ID)
	c.Set(ContextUserRole, user.Role)
	if sessionID != "" {
		c.Set(ContextSessionID, sessionID)
	}
}
