package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// 全局Redis客户端
var (
	redisClient *redis.Client
	redisCtx    = context.Background()
	initOnce    sync.Once
	initialized bool
	mockMode    bool

	// 公开投票页载荷的缓存过期时间；较短，配合写时失效，
	// 保证状态切换后前端轮询很快看到新状态
	sessionPayloadTTL = 30 * time.Second
)

// InitRedis 初始化Redis连接
//
// Redis不可用时退化为模拟模式：缓存读写变为空操作，投票功能不受影响。
func InitRedis() error {
	var initErr error

	initOnce.Do(func() {
		// 检查是否强制使用模拟模式
		if os.Getenv("REDIS_MOCK") == "true" {
			log.Println("强制使用Redis模拟模式")
			mockMode = true
			initialized = true
			return
		}

		redisAddr := os.Getenv("REDIS_ADDR")
		redisPassword := os.Getenv("REDIS_PASSWORD")
		redisDb := 0

		if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
			if db, err := strconv.Atoi(dbStr); err == nil {
				redisDb = db
			}
		}

		if redisAddr == "" {
			redisAddr = "localhost:6379"
		}

		log.Printf("初始化Redis连接, 地址: %s", redisAddr)

		client := redis.NewClient(&redis.Options{
			Addr:        redisAddr,
			Password:    redisPassword,
			DB:          redisDb,
			DialTimeout: 3 * time.Second,
			ReadTimeout: 3 * time.Second,
			PoolSize:    10,
		})

		if _, err := client.Ping(redisCtx).Result(); err != nil {
			log.Printf("Redis连接失败: %v，将使用模拟模式", err)
			mockMode = true
			initialized = true
			return
		}

		redisClient = client
		initialized = true
		mockMode = false
		log.Println("Redis连接初始化成功")
	})

	return initErr
}

// GetClient 获取Redis客户端实例
func GetClient() (*redis.Client, error) {
	if !initialized {
		return nil, fmt.Errorf("Redis客户端未初始化")
	}
	if mockMode {
		return nil, fmt.Errorf("处于模拟模式，无法获取真实客户端")
	}
	return redisClient, nil
}

// CloseRedis 关闭Redis连接
func CloseRedis() {
	if redisClient == nil {
		return
	}
	if err := redisClient.Close(); err != nil {
		log.Printf("关闭Redis连接失败: %v", err)
	}
}

func sessionPayloadKey(slug string) string {
	return fmt.Sprintf("session:%s:public", slug)
}

// CacheSessionPayload 缓存公开投票页的响应载荷
func CacheSessionPayload(slug string, payload interface{}) {
	client, err := GetClient()
	if err != nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("序列化投票页载荷失败: %v", err)
		return
	}

	if err := client.Set(redisCtx, sessionPayloadKey(slug), data, sessionPayloadTTL).Err(); err != nil {
		log.Printf("缓存投票页载荷失败: %s, 错误: %v", slug, err)
	}
}

// GetCachedSessionPayload 读取缓存的公开投票页载荷
func GetCachedSessionPayload(slug string) ([]byte, bool) {
	client, err := GetClient()
	if err != nil {
		return nil, false
	}

	data, err := client.Get(redisCtx, sessionPayloadKey(slug)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// InvalidateSession 在活动状态变更或删除后清除缓存
func InvalidateSession(slug string) {
	client, err := GetClient()
	if err != nil {
		return
	}

	if err := client.Del(redisCtx, sessionPayloadKey(slug)).Err(); err != nil {
		log.Printf("删除缓存键失败: %s, 错误: %v", sessionPayloadKey(slug), err)
	}
}
