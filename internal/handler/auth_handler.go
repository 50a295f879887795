package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/recaatinga-api/internal/middleware"
	"github.com/yourusername/recaatinga-api/internal/service"
)

// AuthHandler serves registration, login, logout and admin elevation.
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
	authMW      *middleware.AuthMiddleware
	secure      bool
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(
	authService *service.AuthService,
	userService *service.UserService,
	authMW *middleware.AuthMiddleware,
	secure bool,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		authMW:      authMW,
		secure:      secure,
	}
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=3,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ElevateRequest carries the out-of-band admin token.
type ElevateRequest struct {
	Token string `json:"token" binding:"required"`
}

// Register creates an account and signs the caller in: both the token cookie
// and a server session are established in the same response.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	user, token, err := h.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[AuthHandler] user %d (%s) registered", user.ID, user.Email)

	h.setTokenCookie(c, token)
	h.authMW.StartSession(c, user)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

// Login authenticates the credentials and establishes both auth backends.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setTokenCookie(c, token)
	h.authMW.StartSession(c, user)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

// Logout destroys the server session and clears both auth cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authMW.EndSession(c); err != nil {
		log.Printf("[AuthHandler] session cleanup on logout failed: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

// Me returns the authenticated caller's account.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	user, err := h.userService.GetUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// ElevateToAdmin promotes the caller when the out-of-band token matches.
// The session is re-created so the new role takes effect immediately.
func (h *AuthHandler) ElevateToAdmin(c *gin.Context) {
	var req ElevateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uint)
	if err := h.authService.ElevateToAdmin(userID, req.Token); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.userService.GetUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[AuthHandler] user %d elevated to admin", userID)

	h.authMW.StartSession(c, user)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Admin access granted",
		"user":    user,
	})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	maxAge := int(h.authService.TokenLifetime().Seconds())
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", h.secure, true)
}
