package router

import (
	"time"

	"fundbook/api"
	"fundbook/config"
	_ "fundbook/docs"
	"fundbook/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
// 读接口无需登录（只读模式），全部写操作与回收站需要管理员 JWT
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authHandler := api.NewAuthHandler(cfg)
	passwordResetHandler := api.NewPasswordResetHandler(cfg)
	memberHandler := api.NewMemberHandler()
	subscriptionHandler := api.NewSubscriptionHandler()
	expenseHandler := api.NewExpenseHandler()
	trashHandler := api.NewTrashHandler()
	summaryHandler := api.NewSummaryHandler()
	exportHandler := api.NewExportHandler()
	streamHandler := api.NewStreamHandler()

	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(5, time.Minute), authHandler.Login)

			// 密码重置
			auth.POST("/password/request-reset", passwordResetHandler.RequestPasswordReset)
			auth.GET("/password/verify-token", passwordResetHandler.VerifyResetToken)
			auth.POST("/password/reset", passwordResetHandler.ResetPassword)
		}

		// 只读浏览（无需登录）
		v1.GET("/members", memberHandler.List)
		v1.GET("/members/:id", memberHandler.Get)
		v1.GET("/subscriptions", subscriptionHandler.List)
		v1.GET("/subscriptions/paid-members", subscriptionHandler.PaidMembers)
		v1.GET("/subscriptions/defaulters", subscriptionHandler.Defaulters)
		v1.GET("/subscriptions/missing-months", subscriptionHandler.MissingMonths)
		v1.GET("/subscriptions/:id", subscriptionHandler.Get)
		v1.GET("/expenses", expenseHandler.List)
		v1.GET("/expenses/categories", expenseHandler.Categories)
		v1.GET("/expenses/:id", expenseHandler.Get)
		v1.GET("/summary", summaryHandler.GetSummary)
		v1.GET("/summary/subscriptions/monthly", summaryHandler.GetMonthlySubscriptions)
		v1.GET("/summary/expenses/by-category", summaryHandler.GetExpensesByCategory)
		v1.GET("/stream/changes", streamHandler.Changes)

		// 需要 JWT 认证的管理员路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			// 账号相关
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			// 成员管理
			authorized.POST("/members", memberHandler.Create)
			authorized.PUT("/members/:id", memberHandler.Update)
			authorized.DELETE("/members/:id", memberHandler.Delete)

			// 缴费管理
			authorized.POST("/subscriptions", subscriptionHandler.Create)
			authorized.PUT("/subscriptions/:id", subscriptionHandler.Update)
			authorized.DELETE("/subscriptions/:id", subscriptionHandler.Delete)

			// 支出管理
			authorized.POST("/expenses", expenseHandler.Create)
			authorized.PUT("/expenses/:id", expenseHandler.Update)
			authorized.DELETE("/expenses/:id", expenseHandler.Delete)

			// 回收站（读写均仅管理员）
			trash := authorized.Group("/trash")
			{
				trash.GET("", trashHandler.List)
				trash.POST("/:id/restore", trashHandler.Restore)
				trash.DELETE("/:id", trashHandler.Purge)
			}

			// 导出相关
			export := authorized.Group("/export")
			{
				export.GET("/subscriptions/csv", exportHandler.ExportSubscriptionsCSV)
				export.GET("/excel", exportHandler.ExportExcel)
				export.GET("/json", exportHandler.ExportJSON)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
