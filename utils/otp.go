package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var (
	ErrCodeNotFound = errors.New("code not found or expired")
	ErrCodeMismatch = errors.New("code does not match")
)

// GenerateNumericCode returns a uniformly random decimal code of the given length.
func GenerateNumericCode(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}

// RedisCodeStore keeps short-lived one-time codes (email verification, password reset).
type RedisCodeStore struct {
	client *redis.Client
}

func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{client: client}
}

func codeKey(purpose, subject string) string {
	return fmt.Sprintf("code:%s:%s", purpose, subject)
}

// Issue generates a 6 digit code, stores it with the given TTL and returns it.
func (s *RedisCodeStore) Issue(ctx context.Context, purpose, subject string, ttl time.Duration) (string, error) {
	code, err := GenerateNumericCode(6)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, codeKey(purpose, subject), code, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store %s code: %w", purpose, err)
	}
	return code, nil
}

// Consume checks the provided code and deletes it on success.
func (s *RedisCodeStore) Consume(ctx context.Context, purpose, subject, provided string) error {
	key := codeKey(purpose, subject)
	stored, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCodeNotFound
		}
		return fmt.Errorf("failed to retrieve %s code: %w", purpose, err)
	}
	if stored != provided {
		return ErrCodeMismatch
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		GetLogger().Error("Failed to delete code after verification", zap.String("purpose", purpose), zap.Error(err))
	}
	return nil
}
