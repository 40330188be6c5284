package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sudays/sudays-backend/config"
	"github.com/sudays/sudays-backend/pkg/logger"
)

// TokenBlacklist records revoked token ids until their natural expiry
type TokenBlacklist struct {
	client *redis.Client
	log    *logger.Logger
}

// Connect opens a Redis connection and verifies it with a ping
func Connect(cfg *config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	log.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("Redis connection established successfully")
	return client, nil
}

// NewTokenBlacklist wraps a client. A nil client yields a blacklist that
// accepts every token, used when Redis is disabled.
func NewTokenBlacklist(client *redis.Client, log *logger.Logger) *TokenBlacklist {
	return &TokenBlacklist{client: client, log: log.Component("token_blacklist")}
}

// Enabled reports whether revocations are persisted
func (b *TokenBlacklist) Enabled() bool {
	return b != nil && b.client != nil
}

func blacklistKey(tokenID string) string {
	return fmt.Sprintf("blacklist:%s", tokenID)
}

// Revoke adds a token id to the blacklist for the remaining token lifetime
func (b *TokenBlacklist) Revoke(ctx context.Context, tokenID string, expiry time.Duration) error {
	if !b.Enabled() {
		return nil
	}
	if expiry <= 0 {
		// Already expired, nothing to revoke
		return nil
	}

	b.log.Debug("Adding token to blacklist", map[string]interface{}{
		"expiry": expiry.String(),
	})

	if err := b.client.Set(ctx, blacklistKey(tokenID), "revoked", expiry).Err(); err != nil {
		b.log.Error("Failed to blacklist token", err)
		return err
	}

	b.log.Debug("Token successfully blacklisted")
	return nil
}

// IsRevoked checks if a token id is in the blacklist
func (b *TokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if !b.Enabled() {
		return false, nil
	}

	val, err := b.client.Get(ctx, blacklistKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		b.log.Error("Failed to check token blacklist", err)
		return false, err
	}

	return val == "revoked", nil
}

// Close closes the underlying connection
func (b *TokenBlacklist) Close() error {
	if b.Enabled() {
		b.log.Info("Closing Redis connection")
		return b.client.Close()
	}
	return nil
}
