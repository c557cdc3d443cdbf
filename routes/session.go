package routes

import (
	"net/http"

	"voice-agent-platform/models"
	"voice-agent-platform/services"
	"voice-agent-platform/utils"

	"github.com/gin-gonic/gin"
)

// SetupSessionRoutes registers the per-room session state endpoints
func SetupSessionRoutes(router *gin.Engine, sessions *services.SessionStore) {
	router.GET("/session/:roomName/state", func(c *gin.Context) {
		state, ok := sessions.Get(c.Param("roomName"))
		if !ok {
			utils.RespondWithNotFound(c, "Session not found.")
			return
		}
		c.JSON(http.StatusOK, state)
	})

	router.POST("/session/:roomName/state", func(c *gin.Context) {
		var update models.SessionUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			utils.RespondWithBadRequest(c, "Invalid payload. Expected JSON body with { sources?, lastAnswer? }.", nil)
			return
		}

		state := sessions.Upsert(c.Param("roomName"), update)
		c.JSON(http.StatusOK, state)
	})
}
