package handler

import (
	"errors"
	"net/http"
	"strings"

	"eventify-backend/internal/middleware"
	"eventify-backend/internal/model"
	"eventify-backend/internal/service"
	apperrors "eventify-backend/pkg/app_errors"
	"eventify-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RegistrationHandler struct {
	service service.RegistrationService
	cookies Cookies
}

func NewRegistrationHandler(service service.RegistrationService, cookies Cookies) *RegistrationHandler {
	return &RegistrationHandler{service: service, cookies: cookies}
}

func (h *RegistrationHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api")
	{
		router.GET("user-registrations", h.List)
		router.POST("register-event", h.Register)
		router.POST("pending-registration", h.CapturePending)
	}
}

// List returns the caller's registered event names; anonymous callers get an empty list.
func (h *RegistrationHandler) List(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	names, err := h.service.ListEventNames(c, userID)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, model.RegistrationsResponse{RegisteredEvents: names})
}

func (h *RegistrationHandler) Register(c *gin.Context) {
	var req model.RegisterEventRequest
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		body := gin.H{"success": false, "message": "Unauthorized"}
		// Unreadable bodies are still 401; there is just nothing to capture.
		if c.ShouldBindJSON(&req) == nil && h.capture(c, req) {
			body["pending"] = true
		}
		c.JSON(http.StatusUnauthorized, body)
		return
	}

	if err := BindJson(c, &req); err != nil {
		return
	}

	if strings.TrimSpace(req.EventName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Event name is required"})
		return
	}

	if _, err := h.service.Register(c, userID, req.EventName); err != nil {
		h.handleError(c, err, "Register")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *RegistrationHandler) CapturePending(c *gin.Context) {
	var req model.RegisterEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	intent, err := h.service.CapturePending(c, req.EventName, req.Link)
	if err != nil {
		h.handleError(c, err, "CapturePending")
		return
	}
	h.cookies.setPending(c, intent.ID)
	c.JSON(http.StatusAccepted, gin.H{"success": true, "pending": true, "id": intent.ID})
}

// capture keeps an anonymous attempt so it can be replayed after login.
func (h *RegistrationHandler) capture(c *gin.Context, req model.RegisterEventRequest) bool {
	if strings.TrimSpace(req.EventName) == "" {
		return false
	}
	intent, err := h.service.CapturePending(c, req.EventName, req.Link)
	if err != nil {
		logger.WithComponent("handler").Warn("capture pending registration failed", zap.Error(err))
		return false
	}
	h.cookies.setPending(c, intent.ID)
	return true
}

func (h *RegistrationHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	var validationErr *apperrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		log.Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": validationErr.Message})
	case errors.Is(err, apperrors.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
	}
}
