package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

const (
	dialTimeout = 5 * time.Second
	lockTimeout = 4 * time.Hour
)

var (
	client *goredis.Client
	mu     sync.Mutex
)

// Init connects the shared client. An empty endpoint leaves the client unset;
// TryLock then degrades to single-instance mode.
func Init(endpoint string) error {
	if endpoint == "" {
		return nil
	}

	cli := goredis.NewClient(&goredis.Options{
		Addr:        endpoint,
		DialTimeout: dialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		return err
	}

	mu.Lock()
	client = cli
	mu.Unlock()
	return nil
}

func GetClient() (*goredis.Client, error) {
	mu.Lock()
	defer mu.Unlock()
	if client == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}
	return client, nil
}

// TryLock takes a best-effort distributed lock so only one scheduler instance
// drives a subsystem. Expire of 0 uses the default lock timeout.
func TryLock(key string, expire time.Duration) error {
	mu.Lock()
	cli := client
	mu.Unlock()
	if cli == nil {
		return nil
	}
	if expire == 0 {
		expire = lockTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	ok, err := cli.SetNX(ctx, lockKey(key), "locked", expire).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("lock %v is held", key)
	}
	return nil
}

func Unlock(key string) error {
	mu.Lock()
	cli := client
	mu.Unlock()
	if cli == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	return cli.Del(ctx, lockKey(key)).Err()
}

func lockKey(key string) string {
	return fmt.Sprintf("lock:%v", key)
}
