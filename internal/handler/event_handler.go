package handler

import (
	"errors"
	"net/http"

	"eventify-backend/internal/middleware"
	"eventify-backend/internal/model"
	"eventify-backend/internal/service"
	apperrors "eventify-backend/pkg/app_errors"
	"eventify-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const msgEventNotFound = "Event not found or you are not authorized to delete it."

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api")
	{
		router.GET("events", h.List)
		router.GET("events/:id", h.GetByEventID)
		// Upload validation runs before the identity check.
		router.POST("events", h.Create)

		authed := router.Group("", middleware.RequireUser())
		authed.GET("my-events", h.ListMine)
		authed.DELETE("events/:id", h.Delete)
	}
}

func (h *EventHandler) List(c *gin.Context) {
	events, err := h.service.List(c, model.AllEvents())
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, nonNilEvents(events))
}

func (h *EventHandler) ListMine(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	events, err := h.service.List(c, model.OwnedBy(userID))
	if err != nil {
		h.handleError(c, err, "ListMine")
		return
	}
	c.JSON(http.StatusOK, nonNilEvents(events))
}

func (h *EventHandler) GetByEventID(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
		return
	}
	event, err := h.service.GetByEventID(c, eventID)
	if errors.Is(err, apperrors.ErrEventNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Event not found"})
		return
	}
	if err != nil {
		h.handleError(c, err, "GetByEventID")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Create(c *gin.Context) {
	var input model.EventInput
	if err := BindForm(c, &input); err != nil {
		return
	}

	// A missing part is reported by the service with the combined message.
	image, _ := c.FormFile(service.ImageField)
	brochure, _ := c.FormFile(service.BrochureField)

	userID, _ := middleware.CurrentUserID(c)
	created, err := h.service.Create(c, userID, input, image, brochure)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Event saved successfully!",
		"event":   created,
	})
}

func (h *EventHandler) Delete(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// Malformed ids are indistinguishable from missing ones.
		c.JSON(http.StatusNotFound, gin.H{"message": msgEventNotFound})
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	if err := h.service.Delete(c, eventID, userID); err != nil {
		h.handleError(c, err, "Delete")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Event deleted successfully.",
	})
}

func nonNilEvents(events []*model.Event) []*model.Event {
	if events == nil {
		return []*model.Event{}
	}
	return events
}

func (h *EventHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	var validationErr *apperrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		log.Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"message": validationErr.Message})
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"message": msgEventNotFound})
	case errors.Is(err, apperrors.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "You must be logged in."})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
