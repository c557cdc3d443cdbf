package routes

import (
	"errors"
	"io"
	"net/http"

	"voice-agent-platform/internal/config"
	"voice-agent-platform/internal/logger"
	"voice-agent-platform/internal/telemetry"
	"voice-agent-platform/models"
	"voice-agent-platform/services"
	"voice-agent-platform/utils"

	"github.com/gin-gonic/gin"
)

const (
	minTopK = 1
	maxTopK = 20
)

// SetupKBRoutes registers the knowledge base endpoints
func SetupKBRoutes(router *gin.Engine, cfg *config.Config, kb *services.KBService, metrics *telemetry.Metrics) {
	router.POST("/kb/upload", func(c *gin.Context) {
		if c.Request.ContentLength > cfg.MaxUploadSize {
			utils.RespondWithPayloadTooLarge(c, "File too large.")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.MaxUploadSize)

		fileHeader, err := c.FormFile("file")
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				utils.RespondWithPayloadTooLarge(c, "File too large.")
				return
			}
			utils.RespondWithBadRequest(c, "No file uploaded. Expected multipart form field 'file'.", nil)
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read uploaded file.", nil)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				utils.RespondWithPayloadTooLarge(c, "File too large.")
				return
			}
			utils.RespondWithInternalError(c, "Failed to read uploaded file.", nil)
			return
		}

		doc, err := kb.Upload(c.Request.Context(), models.UploadInput{
			Filename: fileHeader.Filename,
			MimeType: fileHeader.Header.Get("Content-Type"),
			Data:     data,
		})
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUnsupportedFileType):
				utils.RespondWithBadRequest(c, "Invalid file. Supported file types are .pdf and .txt.", nil)
			case errors.Is(err, services.ErrEmptyDocument):
				utils.RespondWithBadRequest(c, "Invalid file. Could not extract text.", nil)
			case errors.Is(err, services.ErrEmbeddingFailed):
				utils.RespondWithInternalError(c, "Embedding failed. Check GEMINI_API_KEY and embedding model access.", nil)
			case errors.Is(err, services.ErrVectorStoreFailed):
				utils.RespondWithInternalError(c, "Vector store write failed. Check QDRANT_ADDR/QDRANT_COLLECTION and Qdrant server status.", nil)
			default:
				logger.Error("Document upload failed", "filename", fileHeader.Filename, "error", err)
				utils.RespondWithInternalError(c, "Failed to process and store document.", nil)
			}
			return
		}

		metrics.RecordIngest(doc.ChunkCount)
		c.JSON(http.StatusOK, gin.H{"ok": true, "doc": doc})
	})

	router.GET("/kb/docs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"docs": kb.ListDocs()})
	})

	router.DELETE("/kb/docs/:docId", func(c *gin.Context) {
		removed, err := kb.DeleteDoc(c.Request.Context(), c.Param("docId"))
		if err != nil {
			logger.Error("Document delete failed", "docId", c.Param("docId"), "error", err)
			utils.RespondWithInternalError(c, "Failed to delete document.", nil)
			return
		}
		if !removed {
			utils.RespondWithNotFound(c, "Document not found.")
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	router.POST("/kb/search", func(c *gin.Context) {
		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid payload. Expected JSON body with { query, topK? }.", nil)
			return
		}

		topK := 0
		if req.TopK != nil {
			topK = *req.TopK
			if topK < minTopK {
				topK = minTopK
			}
			if topK > maxTopK {
				topK = maxTopK
			}
		}

		results, err := kb.Search(c.Request.Context(), req.Query, topK)
		if err != nil {
			if errors.Is(err, services.ErrInvalidQuery) {
				utils.RespondWithBadRequest(c, "Invalid payload. Expected JSON body with { query, topK? }.", nil)
				return
			}
			logger.Error("Knowledge base search failed", "error", err)
			metrics.RecordSearch("error")
			utils.RespondWithInternalError(c, "Failed to search knowledge base.", nil)
			return
		}

		if results == nil {
			results = []models.SearchResult{}
		}
		metrics.RecordSearch("success")
		c.JSON(http.StatusOK, gin.H{"results": results})
	})
}
