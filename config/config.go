package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Model    ModelConfig    `mapstructure:"model"`
	Severity SeverityConfig `mapstructure:"severity"`
	Detect   DetectConfig   `mapstructure:"detect"`
	Advice   AdviceConfig   `mapstructure:"advice"`
	Bot      BotConfig      `mapstructure:"bot"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type UploadConfig struct {
	MaxSize         int64    `mapstructure:"max_size"`
	MinSize         int64    `mapstructure:"min_size"`
	AllowedTypes    []string `mapstructure:"allowed_types"`
	RequireCropHint bool     `mapstructure:"require_crop_hint"`
}

type ModelConfig struct {
	Path          string        `mapstructure:"path"`
	InputSize     int           `mapstructure:"input_size"`
	NumThreads    int           `mapstructure:"num_threads"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	QueueTimeout  time.Duration `mapstructure:"queue_timeout"`
}

// SeverityConfig 严重程度推定的阈值与高危类别，可调优
type SeverityConfig struct {
	HighImpact         []string `mapstructure:"high_impact"`
	SevereConfidence   float64  `mapstructure:"severe_confidence"`
	HighModerateConf   float64  `mapstructure:"high_moderate_confidence"`
	ModerateConfidence float64  `mapstructure:"moderate_confidence"`
}

type DetectConfig struct {
	Timeout            time.Duration `mapstructure:"timeout"`
	WarnOnCropMismatch bool          `mapstructure:"warn_on_crop_mismatch"`
	CacheResults       bool          `mapstructure:"cache_results"`
}

type AdviceConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxTokens int32         `mapstructure:"max_tokens"`
}

type BotConfig struct {
	Token string `mapstructure:"token"`
	Debug bool   `mapstructure:"debug"`
}

// Load 从 YAML 文件加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 设置默认值
	setDefaults(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// New 使用默认配置路径加载配置
func New() *Config {
	cfg, err := Load("config.yaml")
	if err != nil {
		// 如果加载失败，返回默认配置
		return Default()
	}
	return cfg
}

// Default 返回内置默认配置
func Default() *Config {
	return getDefaultConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("upload.max_size", 10*1024*1024)
	v.SetDefault("upload.min_size", 1024)
	v.SetDefault("upload.allowed_types", []string{"image/jpeg", "image/png", "image/jpg"})
	v.SetDefault("upload.require_crop_hint", true)

	v.SetDefault("model.path", "./models/plant_disease_recog_model_pwp.tflite")
	v.SetDefault("model.input_size", 160)
	v.SetDefault("model.num_threads", 4)
	v.SetDefault("model.max_concurrent", 3)
	v.SetDefault("model.queue_timeout", 30*time.Second)

	v.SetDefault("severity.high_impact", []string{"blight", "rot", "viral", "bacterial"})
	v.SetDefault("severity.severe_confidence", 85.0)
	v.SetDefault("severity.high_moderate_confidence", 70.0)
	v.SetDefault("severity.moderate_confidence", 80.0)

	v.SetDefault("detect.timeout", 60*time.Second)
	v.SetDefault("detect.warn_on_crop_mismatch", true)
	v.SetDefault("detect.cache_results", true)

	v.SetDefault("advice.enabled", false)
	v.SetDefault("advice.api_key", os.Getenv("GEMINI_API_KEY"))
	v.SetDefault("advice.model", "gemini-flash-latest")
	v.SetDefault("advice.timeout", 15*time.Second)
	v.SetDefault("advice.max_tokens", 800)

	v.SetDefault("bot.token", os.Getenv("TELEGRAM_BOT_TOKEN"))
	v.SetDefault("bot.debug", false)
}

func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         ":8080",
			Mode:         "debug",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			TTL:      24 * time.Hour,
		},
		Upload: UploadConfig{
			MaxSize:         10 * 1024 * 1024,
			MinSize:         1024,
			AllowedTypes:    []string{"image/jpeg", "image/png", "image/jpg"},
			RequireCropHint: true,
		},
		Model: ModelConfig{
			Path:          "./models/plant_disease_recog_model_pwp.tflite",
			InputSize:     160,
			NumThreads:    4,
			MaxConcurrent: 3,
			QueueTimeout:  30 * time.Second,
		},
		Severity: SeverityConfig{
			HighImpact:         []string{"blight", "rot", "viral", "bacterial"},
			SevereConfidence:   85,
			HighModerateConf:   70,
			ModerateConfidence: 80,
		},
		Detect: DetectConfig{
			Timeout:            60 * time.Second,
			WarnOnCropMismatch: true,
			CacheResults:       true,
		},
		Advice: AdviceConfig{
			Enabled:   false,
			APIKey:    os.Getenv("GEMINI_API_KEY"),
			Model:     "gemini-flash-latest",
			Timeout:   15 * time.Second,
			MaxTokens: 800,
		},
		Bot: BotConfig{
			Token: os.Getenv("TELEGRAM_BOT_TOKEN"),
			Debug: false,
		},
	}
}
