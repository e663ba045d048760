package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yadavaman13/Fasal-Mitra/config"
	"github.com/yadavaman13/Fasal-Mitra/model"
	"github.com/yadavaman13/Fasal-Mitra/utils"
)

// RedisService 诊断结果缓存。同一张图在模型不变时结果确定，
// 以图片MD5+作物+地点为键缓存完整响应。
type RedisService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisService(cfg *config.RedisConfig) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisService{
		client: client,
		ttl:    cfg.TTL,
	}
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetDetection 从缓存获取诊断结果，未命中返回 (nil, nil)
func (s *RedisService) GetDetection(ctx context.Context, key string) (*model.DetectionResponse, error) {
	data, err := s.client.Get(ctx, "detect:"+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // 缓存未命中
		}
		return nil, err
	}

	var resp model.DetectionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		utils.Logger.Error("failed to unmarshal cached detection",
			zap.String("key", key), zap.Error(err))
		return nil, err
	}

	return &resp, nil
}

// SetDetection 写入诊断结果缓存
func (s *RedisService) SetDetection(ctx context.Context, key string, resp *model.DetectionResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, "detect:"+key, data, s.ttl).Err()
}

func (s *RedisService) Close() error {
	return s.client.Close()
}
