package main

import (
	"github.com/blues/fis/internal/chain"
	"github.com/blues/fis/internal/config"
	"github.com/blues/fis/internal/database"
	"github.com/blues/fis/internal/event"
	"github.com/blues/fis/internal/logger"
	"github.com/blues/fis/internal/router"
	"github.com/blues/fis/internal/scheduler"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Setup(cfg.Log); err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化模拟托管账本
	ledger := chain.NewLedger()

	// 启动审计事件监控
	monitor, err := event.NewMonitor(db, cfg.Event)
	if err != nil {
		logger.Fatal("Failed to create event monitor: %v", err)
	}
	monitor.Start()
	defer monitor.Stop()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, ledger, monitor, cfg)

	// 启动定时任务
	manager := scheduler.Start(db, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
