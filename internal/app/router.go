package app

import (
	"thinkjava_backend/docs"
	"thinkjava_backend/internal/config"
	"thinkjava_backend/internal/middleware"
	"thinkjava_backend/internal/model"
	"thinkjava_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// AuthMiddleware 从 context 取配置
	router.Use(func(ctx *gin.Context) {
		ctx.Set("config", cfg)
		ctx.Next()
	})

	// 1. 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/login", c.auth.Login)
		public.POST("/auth/register", c.auth.Register)
	}

	// 2. 游戏端存档接口（学生本人或教师/管理员）
	game := router.Group("/api/game")
	game.Use(middleware.AuthMiddleware())
	{
		game.GET("/progress/:student_id", c.progress.GetGameProgress)
		game.POST("/progress/:student_id", c.progress.UpdateGameProgress)
	}

	// 3. 通用授权接口
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.GET("/notifications", c.notification.List)
		authGroup.GET("/notifications/unread-count", c.notification.UnreadCount)
		authGroup.POST("/notifications/:id/read", c.notification.MarkRead)

		authGroup.GET("/rankings/students/:student_id", c.ranking.StudentPerformance)
		authGroup.GET("/rankings/sections", c.ranking.SectionRankings)
	}

	// 4. 学生接口
	student := router.Group("/api/student")
	student.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(model.RoleStudent))
	{
		student.GET("/rankings", c.ranking.StudentRankings)
	}

	// 5. 教师接口
	teacher := router.Group("/api/teacher")
	teacher.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(model.RoleTeacher))
	{
		teacher.GET("/rankings", c.ranking.TeacherRankings)

		progress := teacher.Group("/progress")
		{
			progress.POST("/unlock", c.teacherProgress.UnlockLevels)
			progress.POST("/lock", c.teacherProgress.LockLevels)
			progress.POST("/unlock-with-schedule", c.teacherProgress.UnlockWithSchedule)
			progress.POST("/achievements", c.teacherProgress.SetAchievements)
			progress.POST("/reset", c.teacherProgress.ResetProgress)
			progress.GET("/sections/:section_id", c.teacherProgress.SectionOverview)
		}

		teacher.POST("/sections/:section_id/join-code", c.teacherProgress.GenerateJoinCode)
	}

	// 6. 管理员接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.GET("/rankings", c.ranking.AdminRankings)
		admin.GET("/sections", c.roster.ListSections)
		admin.GET("/departments", c.roster.ListDepartments)

		admin.GET("/levels", c.catalog.ListLevels)
		admin.POST("/levels", c.catalog.CreateLevel)
		admin.PUT("/levels/unlocked", c.catalog.SetAllLevelsUnlocked)
		admin.PUT("/levels/:name/unlocked", c.catalog.SetLevelUnlocked)
		admin.DELETE("/levels/:name", c.catalog.DeleteLevel)

		admin.GET("/achievements", c.catalog.ListAchievements)
		admin.POST("/achievements", c.catalog.CreateAchievement)
		admin.PUT("/achievements/active", c.catalog.SetAllAchievementsActive)
		admin.PUT("/achievements/:code/active", c.catalog.SetAchievementActive)
		admin.DELETE("/achievements/:code", c.catalog.DeleteAchievement)

		admin.POST("/progress/reset", c.catalog.ResetAllProgress)
		admin.POST("/progress/sync", c.catalog.ForceSync)
	}
}
