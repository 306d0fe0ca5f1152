package api

import (
	"github.com/gin-gonic/gin"

	"github.com/venturelink/venturelink/internal/handlers"
)

func registerDocumentRoutes(api *gin.RouterGroup, handler *handlers.DocumentHandler) {
	group := api.Group("/documents")
	{
		group.GET("", handler.List)
		group.POST("", handler.Upload)
		group.GET("/:id/download", handler.Download)
		group.POST("/:id/share", handler.Share)
		group.DELETE("/:id", handler.Delete)
	}
}
