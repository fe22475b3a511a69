package redis

import (
	"context"
	"strings"
	"time"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/getevo/evo/v2/lib/settings"
	"github.com/redis/go-redis/v9"
)

var (
	// Client works against single nodes, clusters and sentinel setups alike.
	// It stays nil when Redis is not configured; callers fall back to
	// fail-open behavior.
	Client redis.UniversalClient
	ctx    = context.Background()
)

// Config holds the Redis connection settings read from config.yml under the
// REDIS key. MasterName switches the client into sentinel mode.
type Config struct {
	Addresses        []string      `json:"addresses"`
	Password         string        `json:"password"`
	DB               int           `json:"db"`
	MaxRetries       int           `json:"max_retries"`
	DialTimeout      time.Duration `json:"dial_timeout"`
	ReadTimeout      time.Duration `json:"read_timeout"`
	WriteTimeout     time.Duration `json:"write_timeout"`
	PoolSize         int           `json:"pool_size"`
	MinIdleConns     int           `json:"min_idle_conns"`
	RouteByLatency   bool          `json:"route_by_latency"`
	RouteRandomly    bool          `json:"route_randomly"`
	MasterName       string        `json:"master_name"`
	SentinelPassword string        `json:"sentinel_password"`
}

// Initialize connects the universal client. A missing or unreachable Redis
// is not a startup failure; rate limiting just switches off.
func Initialize() error {
	config := loadConfig()
	if len(config.Addresses) == 0 {
		log.Info("Redis not configured, rate limiting disabled")
		return nil
	}

	Client = redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:            config.Addresses,
		Password:         config.Password,
		DB:               config.DB,
		MaxRetries:       config.MaxRetries,
		DialTimeout:      config.DialTimeout,
		ReadTimeout:      config.ReadTimeout,
		WriteTimeout:     config.WriteTimeout,
		PoolSize:         config.PoolSize,
		MinIdleConns:     config.MinIdleConns,
		RouteByLatency:   config.RouteByLatency,
		RouteRandomly:    config.RouteRandomly,
		MasterName:       config.MasterName,
		SentinelPassword: config.SentinelPassword,
	})

	testCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Client.Ping(testCtx).Err(); err != nil {
		log.Warning("Redis connection failed: %v, rate limiting disabled", err)
		Client = nil
		return nil
	}

	switch {
	case config.MasterName != "":
		log.Info("Redis sentinel connected (master: %s)", config.MasterName)
	case len(config.Addresses) == 1:
		log.Info("Redis connected (%s)", config.Addresses[0])
	default:
		log.Info("Redis cluster connected (%d nodes)", len(config.Addresses))
	}
	return nil
}

// splitAddresses parses a comma-separated address list.
func splitAddresses(raw string) []string {
	var out []string
	for _, addr := range strings.Split(raw, ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" && addr != "[]" {
			out = append(out, addr)
		}
	}
	return out
}

func loadConfig() Config {
	config := Config{
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	}

	// REDIS.ADDRESSES takes precedence; REDIS.ADDRESS and REDIS_URL are the
	// single-node fallbacks.
	if raw := settings.Get("REDIS.ADDRESSES").String(); raw != "" {
		config.Addresses = splitAddresses(raw)
	}
	if len(config.Addresses) == 0 {
		raw := settings.Get("REDIS.ADDRESS").String()
		if raw == "" {
			raw = settings.Get("REDIS_URL").String()
		}
		if raw != "" {
			config.Addresses = splitAddresses(raw)
		}
	}

	config.Password = settings.Get("REDIS.PASSWORD").String()
	if config.Password == "" {
		config.Password = settings.Get("REDIS_PASSWORD").String()
	}
	config.DB = settings.Get("REDIS.DB").Int()
	if config.DB == 0 {
		config.DB = settings.Get("REDIS_DB").Int()
	}

	if poolSize := settings.Get("REDIS.POOL_SIZE").Int(); poolSize > 0 {
		config.PoolSize = poolSize
	}
	if minIdle := settings.Get("REDIS.MIN_IDLE_CONNS").Int(); minIdle > 0 {
		config.MinIdleConns = minIdle
	}
	if maxRetries := settings.Get("REDIS.MAX_RETRIES").Int(); maxRetries > 0 {
		config.MaxRetries = maxRetries
	}

	config.RouteByLatency = settings.Get("REDIS.ROUTE_BY_LATENCY").Bool()
	config.RouteRandomly = settings.Get("REDIS.ROUTE_RANDOMLY").Bool()
	config.MasterName = settings.Get("REDIS.MASTER_NAME").String()
	config.SentinelPassword = settings.Get("REDIS.SENTINEL_PASSWORD").String()

	return config
}

// IsAvailable reports whether the client is connected.
func IsAvailable() bool {
	if Client == nil {
		return false
	}
	return Client.Ping(ctx).Err() == nil
}

// Close shuts the connection down.
func Close() error {
	if Client != nil {
		return Client.Close()
	}
	return nil
}
