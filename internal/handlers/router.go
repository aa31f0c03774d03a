package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hemis-edu/exam-service/internal/config"
	"github.com/hemis-edu/exam-service/internal/models"
	"github.com/hemis-edu/exam-service/internal/repositories"
	"github.com/hemis-edu/exam-service/internal/services"
	"github.com/hemis-edu/exam-service/internal/utils"
	"github.com/hemis-edu/exam-service/internal/validator"
)

type HandlerManager struct {
	sessionHandler    *SessionHandler
	testHandler       *TestHandler
	questionHandler   *QuestionHandler
	resultHandler     *ResultHandler
	studentHandler    *StudentHandler
	monitoringHandler *MonitoringHandler
	authMiddleware    *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorSettings config.CasdoorSettings,
	userRepo repositories.UserRepository,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler:    NewSessionHandler(serviceManager.Session(), validator, logger),
		testHandler:       NewTestHandler(serviceManager.Test(), validator, logger),
		questionHandler:   NewQuestionHandler(serviceManager.Question(), validator, logger),
		resultHandler:     NewResultHandler(serviceManager.Result(), validator, logger),
		studentHandler:    NewStudentHandler(serviceManager.Student(), validator, logger),
		monitoringHandler: NewMonitoringHandler(serviceManager.Monitoring(), validator, logger),
		authMiddleware:    NewCasdoorAuthMiddleware(casdoorSettings, userRepo),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	staffOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleDean)
	supervisorOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleDean)
	studentOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Test management
		tests := v1.Group("/tests")
		{
			tests.POST("", staffOnly, hm.testHandler.CreateTest)
			tests.GET("", staffOnly, hm.testHandler.ListTests)
			tests.GET("/available", studentOnly, hm.testHandler.ListAvailableTests)
			tests.GET("/:id", staffOnly, hm.testHandler.GetTest)
			tests.PUT("/:id", staffOnly, hm.testHandler.UpdateTest)
			tests.DELETE("/:id", staffOnly, hm.testHandler.DeleteTest)
			tests.PUT("/:id/status", staffOnly, hm.testHandler.UpdateTestStatus)
			tests.GET("/:id/stats", staffOnly, hm.testHandler.GetTestStats)

			// Group assignment
			tests.POST("/:id/groups", staffOnly, hm.testHandler.AssignGroups)
			tests.DELETE("/:id/groups/:group_id", staffOnly, hm.testHandler.UnassignGroup)

			// Question bank
			tests.POST("/:id/questions", staffOnly, hm.questionHandler.CreateQuestion)
			tests.GET("/:id/questions", staffOnly, hm.questionHandler.GetQuestions)
			tests.POST("/:id/questions/import", staffOnly, hm.questionHandler.ImportQuestions)

			// Exam sessions - students only
			tests.POST("/:id/session/start", studentOnly, hm.sessionHandler.StartSession)
			tests.POST("/:id/session/submit", studentOnly, hm.sessionHandler.SubmitSession)
			tests.GET("/:id/session", studentOnly, hm.sessionHandler.GetActiveSession)
		}

		// Question management by question ID
		questions := v1.Group("/questions")
		questions.Use(staffOnly)
		{
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
		}

		// Results and retakes
		results := v1.Group("/results")
		{
			results.GET("", hm.resultHandler.ListResults)
			results.GET("/:id", hm.resultHandler.GetResult)
			results.POST("/:id/retake", staffOnly, hm.resultHandler.GrantRetake)
			results.POST("/retake", staffOnly, hm.resultHandler.BulkGrantRetake)
		}

		// Student profiles
		students := v1.Group("/students")
		{
			students.GET("/me", hm.studentHandler.GetMyProfile)
			students.GET("", staffOnly, hm.studentHandler.ListStudents)
			students.GET("/:id", staffOnly, hm.studentHandler.GetStudent)
			students.PUT("/:id", staffOnly, hm.studentHandler.UpdateStudent)
		}

		// Monitoring and mass control - deans and admins only
		monitoring := v1.Group("/monitoring")
		monitoring.Use(supervisorOnly)
		{
			monitoring.GET("/dashboard", hm.monitoringHandler.GetDashboard)
			monitoring.POST("/pause-all", hm.monitoringHandler.PauseAllTests)
			monitoring.POST("/resume-all", hm.monitoringHandler.ResumeAllTests)
			monitoring.POST("/extend-time", hm.monitoringHandler.ExtendTime)
		}

		// Global settings
		settings := v1.Group("/settings")
		settings.Use(supervisorOnly)
		{
			settings.GET("", hm.monitoringHandler.ListSettings)
			settings.GET("/:key", hm.monitoringHandler.GetSetting)
			settings.PUT("/:key", hm.monitoringHandler.SetSetting)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "exam-service",
		})
	})
}
