package routes

import (
	"net/http"
	"strings"

	"voice-agent-platform/internal/livekit"
	"voice-agent-platform/internal/logger"
	"voice-agent-platform/models"
	"voice-agent-platform/utils"

	"github.com/gin-gonic/gin"
)

// SetupLiveKitRoutes registers the room token endpoint
func SetupLiveKitRoutes(router *gin.Engine, tokens *livekit.TokenService) {
	router.POST("/livekit/token", func(c *gin.Context) {
		var req models.TokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid payload. Expected JSON body with { roomName, identity }.", nil)
			return
		}

		req.RoomName = strings.TrimSpace(req.RoomName)
		req.Identity = strings.TrimSpace(req.Identity)
		if req.RoomName == "" || req.Identity == "" {
			utils.RespondWithBadRequest(c, "Invalid payload. Expected JSON body with { roomName, identity }.", nil)
			return
		}

		if !tokens.Configured() {
			utils.RespondWithServiceUnavailable(c, "Server misconfigured: LIVEKIT_API_KEY, LIVEKIT_API_SECRET, and LIVEKIT_URL are required.")
			return
		}

		token, err := tokens.MintToken(req.RoomName, req.Identity)
		if err != nil {
			logger.Error("Failed to mint room token", "room", req.RoomName, "error", err)
			utils.RespondWithInternalError(c, "Failed to mint room token.", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token, "url": tokens.URL()})
	})
}
