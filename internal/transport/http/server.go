package http

import (
	"github.com/gin-gonic/gin"

	"docassist/internal/bootstrap"
	"docassist/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	documentHandler := handler.NewDocumentHandler(app.Ingest, app.Documents, app.Config.Ingest.MaxUploadMB)
	queryHandler := handler.NewQueryHandler(app.Query)

	v1 := router.Group("/api/v1")
	v1.POST("/documents", documentHandler.Upload)
	v1.GET("/documents", documentHandler.List)
	v1.DELETE("/documents/:id", documentHandler.Delete)
	v1.POST("/query", queryHandler.Ask)

	return router
}
