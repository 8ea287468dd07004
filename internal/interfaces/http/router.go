// Package http wires the REST surface: route table, middleware chain and
// handler construction.
package http

import (
	"github.com/gin-gonic/gin"

	"custodia/internal/interfaces/http/handlers"
	"custodia/internal/interfaces/http/middleware"
	"custodia/internal/shared/logger"
)

// Router owns the gin engine and the wired handlers.
type Router struct {
	engine          *gin.Engine
	authHandler     *handlers.AuthHandler
	residentHandler *handlers.ResidentHandler
	visitorHandler  *handlers.VisitorHandler
	requestHandler  *handlers.VisitRequestHandler
	accessHandler   *handlers.AccessHandler
	scannerHandler  *handlers.ScannerHandler
	authMiddleware  *middleware.AuthMiddleware
	logger          logger.Interface
}

// NewRouter assembles the engine with the shared middleware chain.
func NewRouter(
	mode string,
	allowedOrigins []string,
	authHandler *handlers.AuthHandler,
	residentHandler *handlers.ResidentHandler,
	visitorHandler *handlers.VisitorHandler,
	requestHandler *handlers.VisitRequestHandler,
	accessHandler *handlers.AccessHandler,
	scannerHandler *handlers.ScannerHandler,
	authMiddleware *middleware.AuthMiddleware,
	log logger.Interface,
) *Router {
	gin.SetMode(mode)

	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger(log))
	engine.Use(middleware.CORS(allowedOrigins))

	return &Router{
		engine:          engine,
		authHandler:     authHandler,
		residentHandler: residentHandler,
		visitorHandler:  visitorHandler,
		requestHandler:  requestHandler,
		accessHandler:   accessHandler,
		scannerHandler:  scannerHandler,
		authMiddleware:  authMiddleware,
		logger:          log,
	}
}

// SetupRoutes registers the full route table.
func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", r.authHandler.Login)
		auth.GET("/verify", r.authMiddleware.RequireAuth(), r.authHandler.Verify)
	}

	residents := api.Group("/residents", r.authMiddleware.RequireAuth())
	{
		residents.POST("", r.authMiddleware.RequireAdmin(), r.residentHandler.Register)
		residents.GET("", r.authMiddleware.RequireAdmin(), r.residentHandler.List)
		residents.GET("/:id", r.residentHandler.Get)
		residents.PUT("/:id", r.authMiddleware.RequireAdmin(), r.residentHandler.Update)
		residents.DELETE("/:id", r.authMiddleware.RequireAdmin(), r.residentHandler.Delete)
		residents.POST("/:id/block", r.authMiddleware.RequireAdmin(), r.accessHandler.BlockResident)
		residents.POST("/:id/unblock", r.authMiddleware.RequireAdmin(), r.accessHandler.UnblockResident)
	}

	visitors := api.Group("/visitors", r.authMiddleware.RequireAuth())
	{
		visitors.POST("", r.visitorHandler.Add)
		visitors.GET("", r.visitorHandler.List)
		visitors.GET("/:id", r.visitorHandler.Get)
		visitors.PUT("/:id", r.visitorHandler.Update)
		visitors.DELETE("/:id", r.visitorHandler.Delete)
		visitors.POST("/:id/block", r.authMiddleware.RequireAdmin(), r.accessHandler.BlockVisitor)
		visitors.POST("/:id/unblock", r.authMiddleware.RequireAdmin(), r.accessHandler.UnblockVisitor)
	}

	requests := api.Group("/requests", r.authMiddleware.RequireAuth())
	{
		requests.POST("", r.requestHandler.Create)
		requests.GET("", r.requestHandler.List)
		requests.GET("/:id", r.requestHandler.Get)
		requests.PUT("/:id/status", r.authMiddleware.RequireAdmin(), r.requestHandler.Decide)
	}

	scanner := api.Group("/scanner")
	{
		scanner.POST("/verify", r.scannerHandler.Verify)
		scanner.POST("/leave", r.scannerHandler.Leave)
	}

	api.GET("/entry-logs", r.authMiddleware.RequireAuth(), r.accessHandler.ListEntryLogs)
}

// Engine exposes the underlying gin engine for the HTTP server.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
