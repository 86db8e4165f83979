package app

import (
	"institute_admin_backend/docs"
	"institute_admin_backend/internal/config"
	"institute_admin_backend/internal/middleware"
	"institute_admin_backend/internal/model"
	"institute_admin_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)
	a.registerExamRoutes(router, c)
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

// Exam routes are authenticated by the attempt token in the path, not by
// a JWT. Students never hold staff accounts.
func (a *App) registerExamRoutes(router *gin.Engine, c *controllers) {
	exam := router.Group("/api/exam")
	{
		exam.GET("/:token", c.exam.Present)
		exam.POST("/:token/submit", c.exam.Submit)
		exam.GET("/:token/result", c.exam.Result)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))
	{
		api.GET("/me", c.auth.Me)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Staff, model.Admin))
	{
		admin.POST("/assessments", c.assessment.Create)
		admin.GET("/assessments", c.assessment.List)
		admin.GET("/assessments/:id", c.assessment.Get)
		admin.PUT("/assessments/:id", c.assessment.Update)
		admin.DELETE("/assessments/:id", c.assessment.Delete)
		admin.POST("/assessments/:id/activate", c.assessment.Activate)
		admin.POST("/assessments/:id/deactivate", c.assessment.Deactivate)

		admin.POST("/assessments/:id/questions", c.assessment.CreateQuestion)
		admin.GET("/assessments/:id/questions", c.assessment.ListQuestions)
		admin.PUT("/questions/:id", c.assessment.UpdateQuestion)
		admin.DELETE("/questions/:id", c.assessment.DeleteQuestion)
		admin.POST("/questions/:id/image", c.assessment.UploadQuestionImage)

		admin.POST("/assessments/:id/assign", c.assessment.Assign)
		admin.GET("/assessments/:id/attempts", c.assessment.ListAttempts)

		admin.POST("/students", c.student.Create)
		admin.GET("/students", c.student.List)
	}
}
