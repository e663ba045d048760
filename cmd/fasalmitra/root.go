package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yadavaman13/Fasal-Mitra/config"
	"github.com/yadavaman13/Fasal-Mitra/service"
	"github.com/yadavaman13/Fasal-Mitra/utils"
)

// 通过 -ldflags 在构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
	BuildID   = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "fasalmitra",
	Short: "Plant disease diagnosis from leaf photos",
	Long: `Fasal-Mitra diagnoses crop diseases from leaf photos using a 39-class
TensorFlow Lite model, estimates severity, and attaches treatment advice
from a curated knowledge base. Run "fasalmitra serve" for the HTTP API,
"fasalmitra diagnose" for one-off files, or "fasalmitra bot" for Telegram.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(diseasesCmd)
	rootCmd.AddCommand(botCmd)
	rootCmd.Version = Version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig 加载配置文件，缺失时退回内置默认值
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config %s not loaded, using defaults: %v\n", configPath, err)
		return config.Default()
	}
	return cfg
}

// newDetectionService 组装诊断服务：分类器、知识库、建议生成器
// 返回的 cleanup 负责释放模型和外部客户端
func newDetectionService(ctx context.Context, cfg *config.Config) (*service.DetectionService, func(), error) {
	kb, err := service.NewKnowledgeBase()
	if err != nil {
		return nil, nil, fmt.Errorf("load knowledge base: %w", err)
	}

	classifier := service.NewTFLiteClassifier(&cfg.Model)

	var generator service.AdviceGenerator
	var closeGenerator func()
	if cfg.Advice.Enabled {
		gemini, err := service.NewGeminiAdvisor(ctx, &cfg.Advice)
		if err != nil {
			utils.Logger.Warn("generated advice disabled", zap.Error(err))
		} else {
			generator = gemini
			closeGenerator = func() { _ = gemini.Close() }
		}
	}
	advisor := service.NewTreatmentAdvisor(generator, &cfg.Advice)

	svc := service.NewDetectionService(cfg, classifier, kb, advisor)
	cleanup := func() {
		classifier.Close()
		if closeGenerator != nil {
			closeGenerator()
		}
	}
	return svc, cleanup, nil
}
