package routes

import (
	"net/http"

	"voice-agent-platform/models"
	"voice-agent-platform/services"
	"voice-agent-platform/utils"

	"github.com/gin-gonic/gin"
)

// SetupAgentConfigRoutes registers the agent prompt configuration endpoints
func SetupAgentConfigRoutes(router *gin.Engine, store *services.AgentConfigStore) {
	router.GET("/agent/config", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"config": store.Get()})
	})

	router.POST("/agent/config", func(c *gin.Context) {
		var req models.PromptConfigRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid payload. Expected JSON body with non-empty { systemPrompt }.", nil)
			return
		}

		prompt := services.NormalizeSystemPrompt(req.SystemPrompt)
		if prompt == "" {
			utils.RespondWithBadRequest(c, "Invalid payload. Expected JSON body with non-empty { systemPrompt }.", nil)
			return
		}

		config := store.Set(prompt)
		c.JSON(http.StatusOK, gin.H{"ok": true, "config": config})
	})
}
