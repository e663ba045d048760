package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yadavaman13/Fasal-Mitra/bot"
	"github.com/yadavaman13/Fasal-Mitra/utils"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()

	if err := utils.InitLogger(cfg.Server.Mode); err != nil {
		return err
	}
	defer utils.Sync()

	if cfg.Bot.Token == "" {
		return fmt.Errorf("telegram bot token is empty, set TELEGRAM_BOT_TOKEN or bot.token")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	detection, cleanup, err := newDetectionService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	// 预加载模型，失败时机器人照常启动，诊断请求会提示稍后重试
	if err := detection.ReloadModel(); err != nil {
		utils.Logger.Warn("model not loaded, diagnoses will fail until reload", zap.Error(err))
	}

	router, err := bot.New(cfg, detection)
	if err != nil {
		return err
	}

	utils.Logger.Info("bot polling started")
	return router.Run(ctx)
}
