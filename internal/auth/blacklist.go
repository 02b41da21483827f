package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist хранит отозванные токены.
// Отзыв по jti действует на один токен, отзыв по аккаунту на все токены,
// выпущенные не позже момента отзыва (с точностью до миллисекунды, как iat).
// Revoke возвращает false, если jti уже был отозван.
type Blacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
	RevokeSubject(ctx context.Context, subject string, ttl time.Duration) error
	IsSubjectRevoked(ctx context.Context, subject string, issuedAt time.Time) (bool, error)
}

// RedisBlacklist реализация на Redis, записи живут не дольше самих токенов
type RedisBlacklist struct {
	client    *redis.Client
	keyPrefix string
	now       func() time.Time
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{
		client:    client,
		keyPrefix: "fablink:token:blacklist:",
		now:       time.Now,
	}
}

// NewRedisClient подключается и проверяет соединение
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

func (b *RedisBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	ok, err := b.client.SetNX(ctx, b.keyPrefix+"jti:"+jti, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("revoke token: %w", err)
	}
	return ok, nil
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.keyPrefix+"jti:"+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check token blacklist: %w", err)
	}
	return n > 0, nil
}

func (b *RedisBlacklist) RevokeSubject(ctx context.Context, subject string, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.keyPrefix+"subject:"+subject, b.now().UnixMilli(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke subject tokens: %w", err)
	}
	return nil
}

func (b *RedisBlacklist) IsSubjectRevoked(ctx context.Context, subject string, issuedAt time.Time) (bool, error) {
	val, err := b.client.Get(ctx, b.keyPrefix+"subject:"+subject).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check subject revocation: %w", err)
	}
	revokedAt, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse revocation time: %w", err)
	}
	return issuedAt.UnixMilli() <= revokedAt, nil
}

// MemoryBlacklist для одного инстанса и тестов
type MemoryBlacklist struct {
	mu        sync.Mutex
	jtis      map[string]time.Time
	subjects  map[string]subjectRevocation
	lastSweep time.Time
	now       func() time.Time
}

type subjectRevocation struct {
	at        time.Time
	expiresAt time.Time
}

// sweepInterval как часто Revoke чистит истёкшие записи
const sweepInterval = time.Minute

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{
		jtis:     make(map[string]time.Time),
		subjects: make(map[string]subjectRevocation),
		now:      time.Now,
	}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	b.sweep(now)
	if exp, ok := b.jtis[jti]; ok && !now.After(exp) {
		return false, nil
	}
	b.jtis[jti] = now.Add(ttl)
	return true, nil
}

// sweep удаляет истёкшие записи не чаще sweepInterval; вызывается под mu
func (b *MemoryBlacklist) sweep(now time.Time) {
	if now.Sub(b.lastSweep) < sweepInterval {
		return
	}
	b.lastSweep = now
	for jti, exp := range b.jtis {
		if now.After(exp) {
			delete(b.jtis, jti)
		}
	}
	for subject, rev := range b.subjects {
		if now.After(rev.expiresAt) {
			delete(b.subjects, subject)
		}
	}
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.jtis[jti]
	if !ok {
		return false, nil
	}
	if b.now().After(exp) {
		delete(b.jtis, jti)
		return false, nil
	}
	return true, nil
}

func (b *MemoryBlacklist) RevokeSubject(_ context.Context, subject string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	b.sweep(now)
	b.subjects[subject] = subjectRevocation{at: now, expiresAt: now.Add(ttl)}
	return nil
}

func (b *MemoryBlacklist) IsSubjectRevoked(_ context.Context, subject string, issuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rev, ok := b.subjects[subject]
	if !ok {
		return false, nil
	}
	return issuedAt.UnixMilli() <= rev.at.UnixMilli(), nil
}

var (
	_ Blacklist = (*RedisBlacklist)(nil)
	_ Blacklist = (*MemoryBlacklist)(nil)
)
