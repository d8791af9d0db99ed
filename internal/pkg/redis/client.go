package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client 封装 go-redis 的 UniversalClient，
// 地址多于一个时自动走 cluster 模式。
type Client struct {
	rdb goredis.UniversalClient
}

// NewClient addrs 格式为 "host1:port1,host2:port2"。
func NewClient(addrs string) (*Client, error) {
	addrList := strings.Split(addrs, ",")

	rdb := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:        addrList,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) GetClient() goredis.UniversalClient {
	return c.rdb
}

// Publish 向指定 channel 发布一条消息。
func (c *Client) Publish(ctx context.Context, channel string, payload []byte) error {
	return c.rdb.Publish(ctx, channel, payload).Err()
}

// Subscribe 订阅一个或多个 channel，返回底层 PubSub 由调用方管理生命周期。
func (c *Client) Subscribe(ctx context.Context, channels ...string) *goredis.PubSub {
	return c.rdb.Subscribe(ctx, channels...)
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
