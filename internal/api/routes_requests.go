package api

import (
	"github.com/gin-gonic/gin"

	"github.com/venturelink/venturelink/internal/handlers"
)

func registerRequestRoutes(api *gin.RouterGroup, handler *handlers.RequestHandler) {
	group := api.Group("/requests")
	{
		group.POST("", handler.Send)
		group.GET("/incoming", handler.ListIncoming)
		group.GET("/outgoing", handler.ListOutgoing)
		group.POST("/:id/accept", handler.Accept)
		group.POST("/:id/decline", handler.Decline)
	}

	api.GET("/connections", handler.Connections)
}
