package app

import (
	"quizhub_backend/internal/config"
	"quizhub_backend/internal/middleware"
	"quizhub_backend/internal/model"
	"quizhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.Check)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

// Routes any authenticated user can reach. Per-quiz restrictions (windows,
// attempt limits, passwords) are enforced inside the attempt service, not
// here.
func (a *App) registerStudentRoutes(group *gin.RouterGroup, c *controllers) {
	quizzes := group.Group("/quizzes")
	{
		quizzes.GET("", c.quiz.List)
		quizzes.GET("/:id", c.quiz.Get)
		quizzes.GET("/:id/access", c.quiz.EffectiveAccess)
		quizzes.GET("/:id/grade", c.grade.MyGrade)
		quizzes.GET("/:id/attempts", c.attempt.ListMine)
		quizzes.POST("/:id/attempts", c.attempt.Start)
	}

	attempts := group.Group("/attempts")
	{
		attempts.GET("/:id", c.attempt.Get)
		attempts.POST("/:id/responses", c.attempt.SaveResponse)
		attempts.POST("/:id/submit", c.attempt.Submit)
	}
}

func (a *App) registerTeacherRoutes(group *gin.RouterGroup, c *controllers) {
	teacher := group.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/quizzes", c.quiz.Create)
		teacher.PUT("/quizzes/:id", c.quiz.Update)
		teacher.DELETE("/quizzes/:id", c.quiz.Delete)
		teacher.GET("/quizzes/:id/slots", c.quiz.Slots)
		teacher.POST("/quizzes/:id/slots", c.quiz.AddQuestion)
		teacher.DELETE("/quizzes/:id/slots/:slot", c.quiz.RemoveQuestion)
		teacher.PUT("/quizzes/:id/slots/:slot", c.quiz.UpdateSlotMark)

		teacher.POST("/questions", c.quiz.CreateQuestion)
		teacher.GET("/questions/:id", c.quiz.GetQuestion)
		teacher.PUT("/questions/:id", c.quiz.UpdateQuestion)
		teacher.DELETE("/questions/:id", c.quiz.DeleteQuestion)

		teacher.POST("/overrides", c.override.Save)
		teacher.GET("/quizzes/:id/overrides", c.override.ListForQuiz)
		teacher.DELETE("/overrides/:id", c.override.Delete)

		teacher.POST("/groups", c.group.Create)
		teacher.GET("/groups", c.group.List)
		teacher.DELETE("/groups/:id", c.group.Delete)
		teacher.POST("/groups/:id/members/:userId", c.group.AddMember)
		teacher.DELETE("/groups/:id/members/:userId", c.group.RemoveMember)

		teacher.GET("/quizzes/:id/grades", c.grade.ListForQuiz)
		teacher.POST("/quizzes/:id/grades/recompute", c.grade.RecomputeAll)
		teacher.POST("/quizzes/:id/regrade", c.grade.RegradeQuiz)
		teacher.GET("/quizzes/:id/regrade/pending", c.grade.PendingRegrades)
		teacher.POST("/attempts/:id/regrade", c.grade.RegradeAttempt)
		teacher.GET("/attempts/:id/regrade", c.grade.AttemptMarks)
		teacher.DELETE("/attempts/:id", c.attempt.Delete)
	}
}
