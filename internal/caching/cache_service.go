package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"espetaria/internal/models"
	"espetaria/pkg/logger"
)

const (
	keyPrefix = "espetaria:"

	// ChangeChannel carries settlement change notifications so observers
	// (the reports UI) can refresh.
	ChangeChannel = keyPrefix + "changes"
)

type CacheService interface {
	GetCashFlow(ctx context.Context) (*models.CashFlow, error)
	SetCashFlow(ctx context.Context, flow *models.CashFlow, ttl time.Duration) error
	GetReportSummary(ctx context.Context, key string) (*models.ReportSummary, error)
	SetReportSummary(ctx context.Context, key string, summary *models.ReportSummary, ttl time.Duration) error
	// InvalidateAggregates drops every cached aggregate after a write that
	// changes cash or revenue.
	InvalidateAggregates(ctx context.Context) error
	// PublishChange notifies subscribers that ledger state changed.
	PublishChange(ctx context.Context, event string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Tolerate redis:// URLs in REDIS_ADDR.
	addr = strings.TrimPrefix(addr, "redis://")

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisCacheService{client: client}
}

func (s *redisCacheService) GetCashFlow(ctx context.Context) (*models.CashFlow, error) {
	data, err := s.client.Get(ctx, keyPrefix+"cashflow").Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	flow := &models.CashFlow{}
	if err := json.Unmarshal([]byte(data), flow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached cash flow: %w", err)
	}
	return flow, nil
}

func (s *redisCacheService) SetCashFlow(ctx context.Context, flow *models.CashFlow, ttl time.Duration) error {
	data, err := json.Marshal(flow)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+"cashflow", data, ttl).Err()
}

func (s *redisCacheService) GetReportSummary(ctx context.Context, key string) (*models.ReportSummary, error) {
	data, err := s.client.Get(ctx, keyPrefix+"report:"+key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	summary := &models.ReportSummary{}
	if err := json.Unmarshal([]byte(data), summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}
	return summary, nil
}

func (s *redisCacheService) SetReportSummary(ctx context.Context, key string, summary *models.ReportSummary, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+"report:"+key, data, ttl).Err()
}

func (s *redisCacheService) InvalidateAggregates(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *redisCacheService) PublishChange(ctx context.Context, event string) error {
	return s.client.Publish(ctx, ChangeChannel, event).Err()
}

// NoopCacheService is used when redis is unavailable; every lookup misses
// and notifications are logged instead of published.
type NoopCacheService struct{}

func (NoopCacheService) GetCashFlow(ctx context.Context) (*models.CashFlow, error) { return nil, nil }
func (NoopCacheService) SetCashFlow(ctx context.Context, flow *models.CashFlow, ttl time.Duration) error {
	return nil
}
func (NoopCacheService) GetReportSummary(ctx context.Context, key string) (*models.ReportSummary, error) {
	return nil, nil
}
func (NoopCacheService) SetReportSummary(ctx context.Context, key string, summary *models.ReportSummary, ttl time.Duration) error {
	return nil
}
func (NoopCacheService) InvalidateAggregates(ctx context.Context) error { return nil }
func (NoopCacheService) PublishChange(ctx context.Context, event string) error {
	logger.Get().Debug("change notification dropped, no cache backend", zap.String("event", event))
	return nil
}
