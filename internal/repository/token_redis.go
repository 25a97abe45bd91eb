package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenRepo keeps refresh tokens in Redis.  Each token hash is a key
// holding the owner with the token's remaining lifetime as TTL, and a
// per-user set tracks the hashes for bulk revocation.
type RedisTokenRepo struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisTokenRepo(rdb *redis.Client, prefix string) *RedisTokenRepo {
	if prefix == "" {
		prefix = "parking:refresh"
	}
	return &RedisTokenRepo{rdb: rdb, prefix: prefix}
}

func (r *RedisTokenRepo) tokenKey(hash string) string { return r.prefix + ":tok:" + hash }
func (r *RedisTokenRepo) userKey(user string) string  { return r.prefix + ":user:" + user }

func (r *RedisTokenRepo) StoreRefresh(ctx context.Context, username, tokenHash string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, r.tokenKey(tokenHash), username, ttl)
	pipe.SAdd(ctx, r.userKey(username), tokenHash)
	pipe.Expire(ctx, r.userKey(username), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisTokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
	user, err := r.rdb.Get(ctx, r.tokenKey(tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return user, err
}

func (r *RedisTokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	user, err := r.rdb.Get(ctx, r.tokenKey(tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, r.tokenKey(tokenHash))
	pipe.SRem(ctx, r.userKey(user), tokenHash)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisTokenRepo) RevokeAllForUser(ctx context.Context, username string) error {
	hashes, err := r.rdb.SMembers(ctx, r.userKey(username)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	keys := make([]string, 0, len(hashes)+1)
	for _, h := range hashes {
		keys = append(keys, r.tokenKey(h))
	}
	keys = append(keys, r.userKey(username))
	return r.rdb.Del(ctx, keys...).Err()
}
