// Package clients builds application-side service clients from resolved
// secrets, so callers never touch raw connection material.
package clients

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/systmms/kstack/pkg/provider"
	"github.com/systmms/kstack/pkg/secrets"
)

const redisService = "redis-client"

// redisTimeout bounds dial, read, and write operations.
const redisTimeout = 5 * time.Second

type redisConfig struct {
	prefix string
}

// RedisOption adjusts how resolved keys are interpreted.
type RedisOption func(*redisConfig)

// WithPrefix namespaces the resolved keys; "audit-" reads
// audit-redis-client-host and friends.
func WithPrefix(prefix string) RedisOption {
	return func(c *redisConfig) {
		c.prefix = prefix
	}
}

// NewRedis builds a go-redis client from resolved secrets. Keys:
// redis-client-host and redis-client-port are mandatory;
// redis-client-username, redis-client-password, and redis-client-db are
// optional. The client connects lazily on first use.
func NewRedis(resolved secrets.Resolved, opts ...RedisOption) (*redis.Client, error) {
	var cfg redisConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	key := func(suffix string) string {
		return cfg.prefix + redisService + "-" + suffix
	}

	host := resolved[key("host")]
	if host == "" {
		return nil, provider.ServiceNotFoundError{
			Service: redisService,
			Hint:    fmt.Sprintf("resolved secrets lack %s", key("host")),
		}
	}
	port := resolved[key("port")]
	if port == "" {
		return nil, provider.ServiceNotFoundError{
			Service: redisService,
			Hint:    fmt.Sprintf("resolved secrets lack %s", key("port")),
		}
	}
	if _, err := strconv.Atoi(port); err != nil {
		return nil, provider.ConfigurationError{
			Source:  key("port"),
			Message: fmt.Sprintf("port %q is not a number", port),
			Err:     err,
		}
	}

	options := &redis.Options{
		Addr:         net.JoinHostPort(host, port),
		Username:     resolved[key("username")],
		Password:     resolved[key("password")],
		DialTimeout:  redisTimeout,
		ReadTimeout:  redisTimeout,
		WriteTimeout: redisTimeout,
	}

	if db := resolved[key("db")]; db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, provider.ConfigurationError{
				Source:  key("db"),
				Message: fmt.Sprintf("database %q is not a number", db),
				Err:     err,
			}
		}
		options.DB = n
	}

	return redis.NewClient(options), nil
}
