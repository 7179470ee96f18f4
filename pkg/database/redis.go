package database

import (
	"context"
	"fmt"
	"time"

	"jaggery-store/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// InitRedis creates the redis client and pings it
func InitRedis(config utils.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s failed: %w", config.Addr, err)
	}

	return client, nil
}
