// Package cache は送信者表示名の読み取りキャッシュを提供する。
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix は表示名キャッシュのキー接頭辞。
const keyPrefix = "chatnotify:sender_name:"

// NameCache はRedisに送信者の表示名を保存するキャッシュ。
type NameCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewNameCache は新しいNameCacheを生成する。ttlが0以下の場合は1時間とする。
func NewNameCache(client *redis.Client, ttl time.Duration) *NameCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &NameCache{client: client, ttl: ttl}
}

// NewClient はアドレスからRedisクライアントを生成する。
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

// GetName はキャッシュ済みの表示名を返す。キャッシュにない場合はfalseを返す。
func (c *NameCache) GetName(ctx context.Context, userID string) (string, bool, error) {
	name, err := c.client.Get(ctx, key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("表示名キャッシュの取得に失敗: %w", err)
	}
	return name, true, nil
}

// SetName は表示名をTTL付きで保存する。
func (c *NameCache) SetName(ctx context.Context, userID, name string) error {
	if err := c.client.Set(ctx, key(userID), name, c.ttl).Err(); err != nil {
		return fmt.Errorf("表示名キャッシュの保存に失敗: %w", err)
	}
	return nil
}

// key はユーザーIDからキャッシュキーを生成する。
func key(userID string) string {
	return keyPrefix + userID
}
