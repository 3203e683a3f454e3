package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"fixhub/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheService fronts Redis for hot reads and token/session state. Cache
// failures are never fatal: callers log and fall through to the store.
type CacheService interface {
	// Inventory item caching
	GetInventoryItem(ctx context.Context, companyID, itemID uuid.UUID) (*models.InventoryItem, error)
	SetInventoryItem(ctx context.Context, companyID uuid.UUID, item *models.InventoryItem, ttl time.Duration) error
	DeleteInventoryItem(ctx context.Context, companyID, itemID uuid.UUID) error

	// Refresh token management
	SetRefreshToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, token string) (uuid.UUID, error)
	DeleteRefreshToken(ctx context.Context, token string) error

	// Rate limiting
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error)

	// Cache invalidation
	InvalidateCompanyCache(ctx context.Context, companyID uuid.UUID) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis:// and rediss:// style addresses as well as host:port
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func itemKey(companyID, itemID uuid.UUID) string {
	return fmt.Sprintf("fixhub:item:%s:%s", companyID.String(), itemID.String())
}

func (r *redisCacheService) GetInventoryItem(ctx context.Context, companyID, itemID uuid.UUID) (*models.InventoryItem, error) {
	data, err := r.client.Get(ctx, itemKey(companyID, itemID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var item models.InventoryItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *redisCacheService) SetInventoryItem(ctx context.Context, companyID uuid.UUID, item *models.InventoryItem, ttl time.Duration) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, itemKey(companyID, item.ID), data, ttl).Err()
}

func (r *redisCacheService) DeleteInventoryItem(ctx context.Context, companyID, itemID uuid.UUID) error {
	return r.client.Del(ctx, itemKey(companyID, itemID)).Err()
}

func (r *redisCacheService) SetRefreshToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	key := fmt.Sprintf("fixhub:refresh:%s", token)
	return r.client.Set(ctx, key, userID.String(), ttl).Err()
}

func (r *redisCacheService) GetRefreshToken(ctx context.Context, token string) (uuid.UUID, error) {
	key := fmt.Sprintf("fixhub:refresh:%s", token)
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}
	return uuid.Parse(val)
}

func (r *redisCacheService) DeleteRefreshToken(ctx context.Context, token string) error {
	key := fmt.Sprintf("fixhub:refresh:%s", token)
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error) {
	rateKey := fmt.Sprintf("fixhub:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, rateKey).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, rateKey, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (r *redisCacheService) InvalidateCompanyCache(ctx context.Context, companyID uuid.UUID) error {
	pattern := fmt.Sprintf("fixhub:item:%s:*", companyID.String())
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
