package router

import (
	"net/http"

	"eventify-backend/internal/handler"
	"eventify-backend/internal/middleware"
	"eventify-backend/internal/service"
	"eventify-backend/internal/session"

	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	Events        service.EventService
	Registrations service.RegistrationService
	Auth          service.AuthService
	Sessions      session.Manager
	Cookies       handler.Cookies
	// UploadDir is served under /uploads when set.
	UploadDir     string
	MaxUploadSize int64
}

func New(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())
	r.Use(middleware.Session(deps.Sessions, deps.Cookies.SessionName))
	if deps.MaxUploadSize > 0 {
		// Two parts plus form fields.
		r.MaxMultipartMemory = 2*deps.MaxUploadSize + 1<<20
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	if deps.UploadDir != "" {
		r.Static("/uploads", deps.UploadDir)
	}

	handler.NewEventHandler(deps.Events).RegisterRoutes(r)
	handler.NewRegistrationHandler(deps.Registrations, deps.Cookies).RegisterRoutes(r)
	handler.NewAuthHandler(deps.Auth, deps.Registrations, deps.Sessions, deps.Cookies).RegisterRoutes(r)

	return r
}
