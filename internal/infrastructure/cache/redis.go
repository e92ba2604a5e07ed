package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"neontrade/internal/config"

	"github.com/go-redis/redis/v8"
)

var RedisClient *redis.Client

func InitRedis(cfg *config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("连接 Redis 失败: %v", err)
	}

	RedisClient = client
	log.Println("Redis 连接成功")
	return client
}

const (
	keyLoggedIn   = "neontrade:session:logged_in"
	keySessionUsr = "neontrade:session:user"
	keyAdminToken = "neontrade:admin:token"
)

// RedisSession 基于 Redis 的会话标记实现
type RedisSession struct {
	client *redis.Client
}

func NewRedisSession(client *redis.Client) *RedisSession {
	return &RedisSession{client: client}
}

// Sync 每次状态落盘后同步登录标记和当前用户拷贝
func (s *RedisSession) Sync(loggedIn bool, userJSON []byte) {
	ctx := context.Background()

	if err := s.client.Set(ctx, keyLoggedIn, fmt.Sprintf("%t", loggedIn), 0).Err(); err != nil {
		log.Printf("[Session] 同步登录标记失败: %v", err)
		return
	}

	if loggedIn {
		if err := s.client.Set(ctx, keySessionUsr, userJSON, 0).Err(); err != nil {
			log.Printf("[Session] 同步会话用户失败: %v", err)
		}
	} else {
		s.client.Del(ctx, keySessionUsr)
	}
}

func (s *RedisSession) IsLoggedIn() bool {
	val, err := s.client.Get(context.Background(), keyLoggedIn).Result()
	if err != nil {
		return false
	}
	return val == "true"
}

func (s *RedisSession) CurrentUserJSON() []byte {
	val, err := s.client.Get(context.Background(), keySessionUsr).Bytes()
	if err != nil {
		return nil
	}
	return val
}

func (s *RedisSession) SetAdminToken(token string, ttl time.Duration) {
	if err := s.client.Set(context.Background(), keyAdminToken, token, ttl).Err(); err != nil {
		log.Printf("[Session] 保存管理员令牌失败: %v", err)
	}
}

func (s *RedisSession) CheckAdminToken(token string) bool {
	if token == "" {
		return false
	}
	val, err := s.client.Get(context.Background(), keyAdminToken).Result()
	if err != nil {
		return false
	}
	return val == token
}
