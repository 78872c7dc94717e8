package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusflow/campusflow/internal/app/controllers"
	"github.com/campusflow/campusflow/internal/app/models"
	"github.com/campusflow/campusflow/internal/app/models/dto"
	"github.com/campusflow/campusflow/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	subjectController *controllers.SubjectController,
	offeringController *controllers.OfferingController,
	enrollmentController *controllers.EnrollmentController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
		auth.POST("/logout", authController.Logout)
	}

	// --- Public catalogue routes ---
	subjects := v1.Group("/subjects")
	{
		subjects.GET("", subjectController.ListSubjects)
		subjects.GET("/:id", subjectController.GetSubject)
	}

	offerings := v1.Group("/offerings")
	{
		offerings.GET("", offeringController.ListOfferings)
		offerings.GET("/:id", offeringController.GetOffering)
		offerings.GET("/:id/occupancy", offeringController.GetOccupancy)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		// Catalogue management (admin only)
		subjectsProtected := authenticated.Group("/subjects")
		subjectsProtected.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
		{
			subjectsProtected.POST("", subjectController.CreateSubject)
			subjectsProtected.PUT("/:id", subjectController.UpdateSubject)
			subjectsProtected.DELETE("/:id", subjectController.DeleteSubject)
		}

		// Offering management (instructors and admins)
		offeringsProtected := authenticated.Group("/offerings")
		offeringsProtected.Use(authMiddleware.RoleRequired(
			string(models.RoleInstructor), string(models.RoleAdmin)))
		{
			offeringsProtected.POST("", offeringController.CreateOffering)
			offeringsProtected.PUT("/:id", offeringController.UpdateOffering)
			offeringsProtected.DELETE("/:id", offeringController.DeactivateOffering)
			offeringsProtected.GET("/:id/enrollments", enrollmentController.ListByOffering)
		}

		// Enrollment lifecycle
		enrollments := authenticated.Group("/enrollments")
		{
			enrollments.POST("", enrollmentController.Enroll)
			enrollments.GET("/:id", enrollmentController.GetEnrollment)
			enrollments.POST("/:id/withdraw", enrollmentController.Withdraw)

			// Grading (instructors and admins)
			enrollmentsGrading := enrollments.Group("")
			enrollmentsGrading.Use(authMiddleware.RoleRequired(
				string(models.RoleInstructor), string(models.RoleAdmin)))
			{
				enrollmentsGrading.POST("/:id/scores", enrollmentController.RecordScore)
			}
		}

		authenticated.GET("/students/:id/enrollments", enrollmentController.ListByStudent)
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data:      gin.H{"status": "ok"},
			Timestamp: time.Now(),
		})
	})
}
