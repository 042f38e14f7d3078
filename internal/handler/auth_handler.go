package handler

import (
	"errors"
	"net/http"

	"eventify-backend/internal/middleware"
	"eventify-backend/internal/model"
	"eventify-backend/internal/service"
	"eventify-backend/internal/session"
	apperrors "eventify-backend/pkg/app_errors"
	"eventify-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth          service.AuthService
	registrations service.RegistrationService
	sessions      session.Manager
	cookies       Cookies
}

func NewAuthHandler(auth service.AuthService, registrations service.RegistrationService, sessions session.Manager, cookies Cookies) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		registrations: registrations,
		sessions:      sessions,
		cookies:       cookies,
	}
}

func (h *AuthHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/signup", h.Signup)
	r.POST("/signup-admin", h.Signup)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
	r.GET("/api/auth-status", h.Status)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	user, err := h.auth.Signup(c, req)
	if err != nil {
		h.handleError(c, err, "Signup")
		return
	}
	h.startSession(c, user, http.StatusCreated, "Signup successful")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	user, err := h.auth.Login(c, req)
	if err != nil {
		h.handleError(c, err, "Login")
		return
	}
	h.startSession(c, user, http.StatusOK, "Login successful")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookies.clearSession(c)
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Status(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusOK, model.AuthStatus{})
		return
	}
	user, err := h.auth.GetUser(c, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			logger.WithComponent("handler").Error("auth status lookup failed", zap.Int("user_id", userID), zap.Error(err))
		}
		c.JSON(http.StatusOK, model.AuthStatus{})
		return
	}
	c.JSON(http.StatusOK, model.AuthStatus{IsAuthenticated: true, User: user.Username})
}

func (h *AuthHandler) startSession(c *gin.Context, user *model.User, status int, message string) {
	token, err := h.sessions.Issue(user.ID)
	if err != nil {
		h.handleError(c, err, "IssueSession")
		return
	}
	h.cookies.setSession(c, token, h.sessions.TTL())
	middleware.SetUserID(c, user.ID)

	body := gin.H{"success": true, "message": message, "user": user}
	if replayed := h.replayPending(c, user.ID); replayed != nil {
		body["replayedRegistration"] = gin.H{"eventName": replayed.EventName, "link": replayed.Link}
	}
	c.JSON(status, body)
}

// replayPending registers the attempt captured before login, at most once.
func (h *AuthHandler) replayPending(c *gin.Context, userID int) *model.PendingRegistration {
	intentID := pendingID(c)
	if intentID == "" {
		return nil
	}

	intent, err := h.registrations.ReplayPending(c, intentID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrIntentNotFound) {
			h.cookies.clearPending(c)
		} else {
			logger.WithComponent("handler").Warn("replay pending registration failed",
				zap.String("intent_id", intentID), zap.Error(err))
		}
		return nil
	}
	h.cookies.clearPending(c)
	return intent
}

func (h *AuthHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	var validationErr *apperrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		log.Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": validationErr.Message})
	case errors.Is(err, apperrors.ErrEmailTaken):
		log.Warn("Email already registered")
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email already registered"})
	case errors.Is(err, apperrors.ErrUserNotFound):
		log.Warn("Unknown email")
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid email address"})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		log.Warn("Wrong password")
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Incorrect password"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
	}
}
