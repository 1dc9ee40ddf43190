package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

// InterfaceRedisService defines the Redis service interface
type InterfaceRedisService interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	CacheStockSnapshot(stocks []models.Stock, expiration time.Duration) error
	GetStockSnapshot() ([]models.Stock, error)
	InvalidateStockSnapshot() error
	CacheRecommendations(requestID uint, payload interface{}, expiration time.Duration) error
	GetRecommendations(requestID uint, dest interface{}) error
}

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) InterfaceRedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: "", // No password set
		DB:       cfg.RedisDB,
	})

	return &RedisService{
		Client: client,
		Ctx:    context.Background(),
	}
}

// 1 Set sets a key-value pair in Redis with expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// 2 Get gets a value from Redis by key
func (s *RedisService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// 3 Delete deletes a key from Redis
func (s *RedisService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

// 4 CacheStockSnapshot caches the full stock table for the public endpoint
func (s *RedisService) CacheStockSnapshot(stocks []models.Stock, expiration time.Duration) error {
	return s.Set("stock_snapshot", stocks, expiration)
}

// 5 GetStockSnapshot gets the cached stock table
func (s *RedisService) GetStockSnapshot() ([]models.Stock, error) {
	var stocks []models.Stock
	if err := s.Get("stock_snapshot", &stocks); err != nil {
		return nil, err
	}
	return stocks, nil
}

// 6 InvalidateStockSnapshot drops the cached stock table after a mutation
func (s *RedisService) InvalidateStockSnapshot() error {
	return s.Delete("stock_snapshot")
}

// 7 CacheRecommendations caches the ranked donor list for one request
func (s *RedisService) CacheRecommendations(requestID uint, payload interface{}, expiration time.Duration) error {
	key := fmt.Sprintf("recommendations:%d", requestID)
	return s.Set(key, payload, expiration)
}

// 8 GetRecommendations reads the cached ranked donor list for one request
func (s *RedisService) GetRecommendations(requestID uint, dest interface{}) error {
	key := fmt.Sprintf("recommendations:%d", requestID)
	return s.Get(key, dest)
}
