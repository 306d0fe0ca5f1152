package api

import (
	"github.com/gin-gonic/gin"

	"github.com/venturelink/venturelink/internal/handlers"
)

func registerMessageRoutes(api *gin.RouterGroup, handler *handlers.MessageHandler) {
	api.POST("/messages", handler.Send)
	api.GET("/messages/unread", handler.UnreadCount)

	group := api.Group("/conversations")
	{
		group.GET("", handler.ListConversations)
		group.GET("/:id/messages", handler.ListMessages)
		group.POST("/:id/read", handler.MarkRead)
	}
}
