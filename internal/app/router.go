package app

import (
	"eduassess_backend/docs"
	"eduassess_backend/internal/config"
	"eduassess_backend/internal/middleware"
	"eduassess_backend/internal/model"

	"eduassess_backend/pkg/monitoring"
	"eduassess_backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 触发AI调用的接口配额更严
	aiLimit := security.GradingRateLimiter(cfg.RateLimit)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg, repos.user), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		// 学生答题接口
		student := authGroup.Group("/")
		student.Use(middleware.RoleMiddleware(model.Student))
		{
			student.GET("/papers/:id/take", c.submission.GetPaperForTaking)
			student.POST("/papers/:id/submissions", aiLimit, c.submission.Submit)
		}

		// 成绩查询：学生查自己的，教师查自己试卷下的
		authGroup.GET("/submissions/:id/result",
			middleware.RoleMiddleware(model.Student, model.Teacher),
			c.submission.GetResult)

		// 教师相关接口
		a.registerTeacherRoutes(authGroup, c, aiLimit)
	}
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers, aiLimit gin.HandlerFunc) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/papers", c.paper.CreatePaper)
		teacher.GET("/papers", c.paper.ListPapers)
		teacher.GET("/papers/:id", c.paper.GetPaper)
		teacher.PUT("/papers/:id", c.paper.UpdatePaper)
		teacher.DELETE("/papers/:id", c.paper.DeletePaper)
		teacher.POST("/papers/:id/publish", c.paper.PublishPaper)

		// AI 辅助出题
		teacher.POST("/papers/analyze-content", aiLimit, c.paper.AnalyzeContent)
		teacher.POST("/papers/generate", aiLimit, c.paper.GeneratePaper)

		// 评分标准
		teacher.POST("/papers/:id/scheme/generate", aiLimit, c.paper.GenerateScheme)
		teacher.PUT("/papers/:id/scheme", c.paper.AuthorScheme)

		// 提交与人工复核
		teacher.GET("/papers/:id/submissions", c.paper.ListSubmissions)
		teacher.POST("/submissions/:id/review", c.paper.ReviewResult)
	}
}
