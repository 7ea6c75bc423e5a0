package handlers

import (
	"collab_notes/internal/hub"
	"collab_notes/internal/logger"
	"collab_notes/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services, the broadcast hub and logging.
type Handler struct {
	services *service.Service
	hub      *hub.Hub
	log      *logger.Logger

	// strictWSAuth rejects websocket connections carrying an invalid token
	// instead of downgrading them to anonymous.
	strictWSAuth bool
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, h *hub.Hub, log *logger.Logger) *Handler {
	return &Handler{services: services, hub: h, log: log}
}

// SetStrictWSAuth switches the websocket auth policy from permissive
// (default) to strict.
func (h *Handler) SetStrictWSAuth(strict bool) {
	h.strictWSAuth = strict
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Note endpoints: public read, token-gated mutations
	h.registerNoteRoutes(router)

	// Live snapshot channel (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerNoteRoutes(r *gin.Engine) {
	notes := r.Group("/notes")
	{
		notes.GET("", h.listNotes)
		notes.POST("", h.userIdMiddleware, h.createNote)
		notes.PUT("/:id", h.userIdMiddleware, h.updateNote)
		notes.DELETE("/:id", h.userIdMiddleware, h.deleteNote)
	}
}
