package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"app/internal/domain/model"

	"github.com/go-redis/redis/v8"
)

// 商品詳細のread-throughキャッシュ。
// キャッシュ障害は読み取り失敗として扱い、呼び出し側はDBへフォールバックする。
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var ErrCacheMiss = errors.New("cache miss")

func NewProductCache(redisURL string, ttl time.Duration) (*ProductCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return &ProductCache{rdb: rdb, ttl: ttl}, nil
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *ProductCache) Get(ctx context.Context, productID int64) (model.Product, error) {
	val, err := c.rdb.Get(ctx, productKey(productID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Product{}, ErrCacheMiss
		}
		return model.Product{}, err
	}

	var p model.Product
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (c *ProductCache) Set(ctx context.Context, p model.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(p.ID), data, c.ttl).Err()
}

// 書き込み系（更新・削除・在庫変更）の後に呼ぶ
func (c *ProductCache) Invalidate(ctx context.Context, productID int64) error {
	return c.rdb.Del(ctx, productKey(productID)).Err()
}
