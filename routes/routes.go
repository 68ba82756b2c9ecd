package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/podgen/podcast-generator-backend/controllers"
	"github.com/podgen/podcast-generator-backend/middleware"
	"github.com/podgen/podcast-generator-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.Use(middleware.DBMiddleware(db))

	r.GET("/ping", controllers.Ping)
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/google", controllers.GoogleLogin)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		documents := protected.Group("/documents")
		{
			documents.POST("/upload", controllers.UploadDocument)
			documents.GET("", controllers.GetDocuments)
			documents.GET("/file/:fileId", controllers.GetDocumentFile)
			documents.GET("/:id", controllers.GetDocumentDetail)
			documents.DELETE("/:id", controllers.DeleteDocument)
		}

		summaries := protected.Group("/summaries")
		{
			summaries.POST("", controllers.CreateSummary)
			summaries.POST("/bulk-generate", controllers.BulkGenerateSummaries)
			summaries.GET("", controllers.GetSummaries)
			summaries.GET("/:id", controllers.GetSummaryDetail)
			summaries.DELETE("/:id", controllers.DeleteSummary)
		}

		podcasts := protected.Group("/podcasts")
		{
			podcasts.POST("", controllers.CreatePodcast)
			podcasts.POST("/from-summary/:id", controllers.CreatePodcastFromSummary)
			podcasts.GET("", controllers.GetPodcasts)
			podcasts.GET("/:id", controllers.GetPodcastDetail)
			podcasts.GET("/:id/download", controllers.DownloadPodcast)
			podcasts.DELETE("/:id", controllers.DeletePodcast)
		}

		protected.POST("/tts", controllers.TextToSpeechHandler)

		voices := protected.Group("/custom-voices")
		{
			voices.POST("/upload", controllers.UploadCustomVoice)
			voices.GET("", controllers.GetCustomVoices)
			voices.GET("/:id", controllers.GetCustomVoiceDetail)
			voices.GET("/:id/audio", controllers.GetCustomVoiceAudio)
			voices.PUT("/:id", controllers.UpdateCustomVoice)
			voices.DELETE("/:id", controllers.DeleteCustomVoice)
		}

		cloning := protected.Group("/voice-cloning")
		{
			cloning.GET("/voices", controllers.GetCloningVoices)
			cloning.POST("/clone", controllers.CloneVoice)
		}
	}

	r.GET("/ws/status", ws.HandleStatusWebSocket)
	r.GET("/ws/resource/:id", ws.HandleResourceWebSocket)

	return r
}
