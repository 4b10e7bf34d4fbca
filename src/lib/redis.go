package lib

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

const travelCacheTTL = 30 * time.Second

func travelCacheKey(travelId string) string {
	return "travel:" + travelId
}

// CacheTravelView stores a serialized travel view under a short TTL.
// Advisory only: booking decisions never read from this cache.
func CacheTravelView(ctx context.Context, travelId string, payload []byte) {
	rdb := GetRedisClient()
	if rdb == nil {
		return
	}
	if err := rdb.SetEx(ctx, travelCacheKey(travelId), payload, travelCacheTTL).Err(); err != nil {
		log.Printf("[redis] Failed to cache travel %s: %s\n", travelId, err.Error())
	}
}

func GetCachedTravelView(ctx context.Context, travelId string) ([]byte, bool) {
	rdb := GetRedisClient()
	if rdb == nil {
		return nil, false
	}
	val, err := rdb.Get(ctx, travelCacheKey(travelId)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("[redis] Error reading cached travel %s: %s\n", travelId, err.Error())
		return nil, false
	}
	return val, true
}

// InvalidateTravelView drops the cached view after a seat adjustment.
func InvalidateTravelView(ctx context.Context, travelId string) {
	rdb := GetRedisClient()
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, travelCacheKey(travelId)).Err(); err != nil {
		log.Printf("[redis] Failed to invalidate travel %s: %s\n", travelId, err.Error())
	}
}
