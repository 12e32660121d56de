package router

import (
	"github.com/blues/fis/internal/chain"
	"github.com/blues/fis/internal/config"
	"github.com/blues/fis/internal/event"
	"github.com/blues/fis/internal/handler"
	"github.com/blues/fis/internal/middleware"
	"github.com/blues/fis/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, ledger *chain.Ledger, monitor *event.Monitor, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "fractional-investment-service",
		})
	})

	authCfg := &cfg.Auth

	// API组
	api := r.Group("/api")
	{
		// 认证相关路由
		authHandler := handler.NewAuthHandler(db, authCfg)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.RequireAuth(authCfg), authHandler.Profile)
			auth.POST("/kyc", middleware.RequireAuth(authCfg), authHandler.CompleteKyc)
		}

		// 项目相关路由
		projectHandler := handler.NewProjectHandler(db, ledger, monitor)
		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.GetProjects)
			projects.GET("/:projectId", projectHandler.GetProject)
			projects.GET("/:projectId/escrow", projectHandler.GetEscrowStatus)
			projects.POST("", middleware.RequireAuth(authCfg, model.RoleIssuer, model.RoleAdmin), projectHandler.CreateProject)
			projects.PATCH("/:projectId", middleware.RequireAuth(authCfg, model.RoleIssuer, model.RoleAdmin), projectHandler.UpdateProject)
			projects.POST("/:projectId/milestones", middleware.RequireAuth(authCfg, model.RoleIssuer, model.RoleAdmin), projectHandler.AddMilestone)
			projects.PATCH("/:projectId/milestones/:milestoneId", middleware.RequireAuth(authCfg, model.RoleIssuer, model.RoleAdmin), projectHandler.UpdateMilestone)
			projects.POST("/:projectId/milestones/:milestoneId/proofs", middleware.RequireAuth(authCfg, model.RoleIssuer, model.RoleAdmin), projectHandler.SubmitProof)
			projects.POST("/:projectId/milestones/:milestoneId/review", middleware.RequireAuth(authCfg, model.RoleAdmin), projectHandler.ReviewProof)
		}

		// 发行方相关路由
		issuerHandler := handler.NewIssuerHandler(db)
		issuers := api.Group("/issuers")
		{
			issuers.POST("/submissions", middleware.RequireAuth(authCfg, model.RoleIssuer), issuerHandler.CreateSubmission)
			issuers.GET("/submissions/mine", middleware.RequireAuth(authCfg, model.RoleIssuer), issuerHandler.ListMySubmissions)
			issuers.GET("/:issuerId/summary", middleware.RequireAuth(authCfg, model.RoleIssuer, model.RoleAdmin), issuerHandler.GetSummary)
			issuers.GET("/:issuerId/projects", middleware.RequireAuth(authCfg, model.RoleIssuer, model.RoleAdmin), issuerHandler.ListProjects)
		}

		// 投资人相关路由
		investorHandler := handler.NewInvestorHandler(db, ledger, monitor)
		investors := api.Group("/investors")
		{
			investors.POST("/investments", middleware.RequireAuth(authCfg, model.RoleInvestor), investorHandler.RecordInvestment)
			investors.GET("/:investorId/portfolio", middleware.RequireAuth(authCfg, model.RoleInvestor, model.RoleAdmin), investorHandler.GetPortfolio)
			investors.GET("/:investorId/transactions", middleware.RequireAuth(authCfg, model.RoleInvestor, model.RoleAdmin), investorHandler.GetTransactions)
		}

		// 管理员相关路由
		adminHandler := handler.NewAdminHandler(db, monitor)
		admin := api.Group("/admin", middleware.RequireAuth(authCfg, model.RoleAdmin))
		{
			admin.GET("/summary", adminHandler.GetSummary)
			admin.GET("/submissions", adminHandler.ListSubmissions)
			admin.PATCH("/submissions/:submissionId/approve", adminHandler.ApproveSubmission)
			admin.PATCH("/submissions/:submissionId/reject", adminHandler.RejectSubmission)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
