package routes

import (
	"conference-management-api/controllers"
	"conference-management-api/middleware"
	"conference-management-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/register", controllers.Register)
			public.POST("/login", controllers.Login)

			// OAuth sign-in (Google / ORCID)
			public.GET("/auth/:provider/url", controllers.GetOAuthURL)
			public.POST("/auth/:provider/callback", controllers.OAuthCallback)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Conference Management API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth management
			protected.POST("/refresh", controllers.RefreshToken)

			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Conferences
			conferences := protected.Group("/conferences")
			{
				conferences.GET("", controllers.ListConferences)
				conferences.GET("/:id", controllers.GetConference)

				// Only organizers manage conferences
				conferences.POST("", middleware.RequireRole(models.RoleOrganizer), controllers.CreateConference)
				conferences.PUT("/:id", middleware.RequireRole(models.RoleOrganizer), controllers.UpdateConference)
				conferences.DELETE("/:id", middleware.RequireRole(models.RoleOrganizer), controllers.DeleteConference)
				conferences.POST("/:id/tracks", middleware.RequireRole(models.RoleOrganizer), controllers.CreateTrack)
			}

			// Submissions
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.ListSubmissions)
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.POST("", controllers.CreateSubmission)
				submissions.PUT("/:id", controllers.UpdateSubmission)
				submissions.DELETE("/:id", controllers.DeleteSubmission)

				submissions.POST("/:id/co-authors", controllers.AddCoAuthor)
				submissions.DELETE("/:id/co-authors/:co_author_id", controllers.RemoveCoAuthor)
				submissions.PUT("/:id/file", controllers.AttachFile)
				submissions.PUT("/:id/camera-ready", controllers.SubmitCameraReady)

				// Organizer-side review workflow
				submissions.POST("/:id/reviewers", middleware.RequireRole(models.RoleOrganizer), controllers.AssignReviewer)
				submissions.POST("/:id/decision", middleware.RequireRole(models.RoleOrganizer), controllers.DecideSubmission)
				submissions.POST("/:id/finalize", middleware.RequireRole(models.RoleOrganizer), controllers.FinalizeSubmission)
			}

			// Reviews
			reviews := protected.Group("/reviews")
			{
				reviews.GET("", middleware.RequireRole(models.RoleReviewer), controllers.ListMyReviews)
				reviews.PUT("/:id", middleware.RequireRole(models.RoleReviewer), controllers.SaveReview)
				reviews.POST("/:id/submit", middleware.RequireRole(models.RoleReviewer), controllers.SubmitReview)
				reviews.POST("/:id/request-revision", middleware.RequireRole(models.RoleOrganizer), controllers.RequestRevision)
			}

			// Files
			files := protected.Group("/files")
			{
				files.POST("/upload", controllers.UploadFile)
				files.DELETE("/:id", controllers.DeleteFile)
			}

			// Dashboard
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("/stats", controllers.GetDashboardStats)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetMyNotifications)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
			}
		}
	}
}
