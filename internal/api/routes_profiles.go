package api

import (
	"github.com/gin-gonic/gin"

	"github.com/venturelink/venturelink/internal/handlers"
)

func registerProfileRoutes(api *gin.RouterGroup, handler *handlers.ProfileHandler) {
	group := api.Group("/profiles")
	{
		group.GET("", handler.Browse)
		group.GET("/me", handler.Me)
		group.PUT("/me", handler.Upsert)
		group.GET("/:userID", handler.Get)
	}
}
