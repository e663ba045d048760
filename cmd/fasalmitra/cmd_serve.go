package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yadavaman13/Fasal-Mitra/handler"
	"github.com/yadavaman13/Fasal-Mitra/middleware"
	"github.com/yadavaman13/Fasal-Mitra/service"
	"github.com/yadavaman13/Fasal-Mitra/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP diagnosis API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	// 加载配置
	cfg := loadConfig()

	// 初始化日志
	if err := utils.InitLogger(cfg.Server.Mode); err != nil {
		return err
	}
	defer utils.Sync()

	utils.Logger.Info("starting Fasal-Mitra server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
		zap.String("git_branch", GitBranch))

	// 初始化Redis
	redisService := service.NewRedisService(&cfg.Redis)
	ctx := cmd.Context()
	if err := redisService.Ping(ctx); err != nil {
		utils.Logger.Warn("redis connection failed, cache disabled", zap.Error(err))
	} else {
		utils.Logger.Info("redis connected successfully")
	}
	defer redisService.Close()

	// 组装诊断服务
	detection, cleanup, err := newDetectionService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	// 预加载模型，失败时进入降级状态，等待 reload
	if err := detection.ReloadModel(); err != nil {
		utils.Logger.Warn("model not loaded, serving in degraded state", zap.Error(err))
	}

	// 初始化Handler
	detectHandler := handler.NewDetectHandler(cfg, redisService, detection)

	// 设置Gin模式
	gin.SetMode(cfg.Server.Mode)

	// 创建路由
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	// 健康检查和版本信息
	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		if detection.ModelState() == service.StateDegraded {
			status = "degraded"
		}
		c.JSON(200, gin.H{
			"status":  status,
			"model":   detection.ModelState(),
			"version": Version,
		})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"build_id":   BuildID,
			"git_commit": GitCommit,
			"git_branch": GitBranch,
		})
	})

	// API路由
	api := r.Group("/api/v1")
	{
		api.POST("/disease/detect", detectHandler.Detect)
		api.GET("/disease/supported-crops", detectHandler.SupportedCrops)
		api.GET("/disease/diseases", detectHandler.Diseases)
		api.POST("/disease/model/reload", detectHandler.ReloadModel)
	}

	// 启动服务器
	utils.Logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := r.Run(cfg.Server.Port); err != nil {
		utils.Logger.Fatal("failed to start server", zap.Error(err))
	}
	return nil
}
