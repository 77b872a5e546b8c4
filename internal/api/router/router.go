package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-records/config"
	"student-records/internal/api/handler"
	"student-records/internal/api/middleware"
	"student-records/pkg/jwt"
	"student-records/pkg/redis"
)

// 限流：登录按 IP，同步按账号（每次同步都会访问外部表格）
const (
	loginRateLimit  = 10
	syncRateLimit   = 6
	rateLimitWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger, cfg.Sheet.Timeout))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", middleware.RateLimit(rdb, "login", loginRateLimit, rateLimitWindow), h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.User.ChangePassword)

			// 后台账号管理
			users := authorized.Group("/users", middleware.RoleAuth("admin"))
			{
				users.GET("", h.User.List)
				users.POST("", h.User.Create)
				users.DELETE("/:id", h.User.Delete)
				users.POST("/:id/reset-password", h.User.ResetPassword)
			}

			// 学生档案
			students := authorized.Group("/students")
			{
				students.GET("", h.Student.List)
				students.GET("/:id", h.Student.Get)
				students.POST("", h.Student.Create)
				students.PUT("/:id", h.Student.Update)
				students.DELETE("/:id", h.Student.Delete)
				students.POST("/import", middleware.RateLimit(rdb, "sync", syncRateLimit, rateLimitWindow), h.Sync.Import)
			}

			// 表格镜像同步
			sync := authorized.Group("/sync")
			{
				sync.GET("/status", h.Sync.Status)
				sync.POST("/push", middleware.RateLimit(rdb, "sync", syncRateLimit, rateLimitWindow), h.Sync.Push)
				sync.POST("/pull", middleware.RateLimit(rdb, "sync", syncRateLimit, rateLimitWindow), h.Sync.Pull)
			}

			// 导出
			authorized.GET("/export/students", h.Export.ExportStudents)

			// 院系 / 专业 / 课程字典（维护仅限管理员）
			authorized.GET("/departments", h.Lookup.ListDepartments)

			programs := authorized.Group("/programs")
			{
				programs.GET("", h.Lookup.ListPrograms)
				programs.POST("", middleware.RoleAuth("admin"), h.Lookup.CreateProgram)
				programs.DELETE("/:id", middleware.RoleAuth("admin"), h.Lookup.DeleteProgram)
			}

			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Lookup.ListCourses)
				courses.POST("", middleware.RoleAuth("admin"), h.Lookup.CreateCourse)
				courses.DELETE("/:id", middleware.RoleAuth("admin"), h.Lookup.DeleteCourse)
			}
		}
	}

	return r
}
