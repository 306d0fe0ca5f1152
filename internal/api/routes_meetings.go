package api

import (
	"github.com/gin-gonic/gin"

	"github.com/venturelink/venturelink/internal/handlers"
)

func registerMeetingRoutes(api *gin.RouterGroup, handler *handlers.MeetingHandler) {
	group := api.Group("/meetings")
	{
		group.GET("", handler.List)
		group.POST("", handler.Schedule)
		group.PATCH("/:id/status", handler.UpdateStatus)
	}
}
