package handler

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置路由
func SetupRouter(h *Handler) *gin.Engine {
	// 设置 gin 为发布模式（减少日志输出）
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 注册中间件
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	// API 路由组
	api := r.Group("/api/v1")
	{
		// 认证相关
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/logout", h.Logout)
		}

		// 行情相关
		market := api.Group("/market")
		{
			market.GET("/prices", h.Prices)
		}

		// 用户相关（需要登录）
		user := api.Group("/user", h.AuthRequired())
		{
			user.GET("/profile", h.Profile)
			user.POST("/bank", h.UpdateBankAccount)
			user.POST("/language", h.SetLanguage)
		}

		// 交易相关（需要登录）
		trade := api.Group("/trade", h.AuthRequired())
		{
			trade.POST("/start", h.StartTrade)
			trade.GET("/active", h.ActiveTrades)
			trade.GET("/history", h.TradeHistory)
			trade.GET("/rates", h.ProfitRates)
		}

		// 充值/提现相关（需要登录）
		transaction := api.Group("/transaction", h.AuthRequired())
		{
			transaction.POST("/submit", h.SubmitTransaction)
			transaction.GET("/list", h.ListTransactions)
		}

		// 通知相关（需要登录）
		notification := api.Group("/notification", h.AuthRequired())
		{
			notification.GET("/list", h.Notifications)
			notification.POST("/read", h.MarkNotificationsRead)
		}

		// 管理端
		api.POST("/admin/login", h.AdminLogin)
		admin := api.Group("/admin", h.AdminAuthRequired())
		{
			admin.POST("/transaction/resolve", h.ResolveTransaction)
			admin.POST("/balance/adjust", h.ManualAdjust)
			admin.POST("/invitation/generate", h.GenerateInvitationCode)
			admin.POST("/invitation/revoke", h.RevokeInvitationCode)
			admin.GET("/invitation/list", h.ListInvitationCodes)
			admin.POST("/notification/broadcast", h.Broadcast)
			admin.GET("/users", h.ListUsers)
			admin.GET("/transactions", h.ListAllTransactions)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
