package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pushpilot-be/internal/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// consumeScript runs the whole check-and-increment inside Redis so concurrent
// callers on any replica see a single counter.
var consumeScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
if redis.call('EXISTS', key) == 0 then
  if limit <= 0 then
    return {0, 0}
  end
  redis.call('HSET', key, 'id', ARGV[2], 'count', 1, 'limit', limit,
    'last_reset', ARGV[3], 'next_reset', ARGV[4], 'created_at', ARGV[3], 'updated_at', ARGV[3])
  redis.call('EXPIRE', key, tonumber(ARGV[5]))
  return {1, 1}
end
local count = tonumber(redis.call('HGET', key, 'count'))
if count >= limit then
  return {0, count}
end
count = redis.call('HINCRBY', key, 'count', 1)
redis.call('HSET', key, 'updated_at', ARGV[3])
return {1, count}
`)

type RateLimitRepository struct {
	rdb       *redis.Client
	retention time.Duration
}

// NewRateLimitRepository keeps each day's hash for retention after its first write.
func NewRateLimitRepository(rdb *redis.Client, retention time.Duration) *RateLimitRepository {
	if retention <= 0 {
		retention = 48 * time.Hour
	}
	return &RateLimitRepository{rdb: rdb, retention: retention}
}

func redisKey(userId, date string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, date, userId)
}

func (r *RateLimitRepository) Consume(ctx context.Context, userId, date string, limit int, now time.Time) (*entity.RateLimitDecision, error) {
	res, err := consumeScript.Run(ctx, r.rdb, []string{redisKey(userId, date)},
		limit,
		uuid.NewString(),
		now.UTC().Format(time.RFC3339Nano),
		entity.NextUTCMidnight(now).Format(time.RFC3339Nano),
		int64(r.retention.Seconds()),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	return &entity.RateLimitDecision{
		Allowed: res[0] == 1,
		Current: int(res[1]),
		Limit:   limit,
	}, nil
}

func (r *RateLimitRepository) FindByUserAndDate(ctx context.Context, userId, date string) (*entity.RateLimit, error) {
	fields, err := r.rdb.HGetAll(ctx, redisKey(userId, date)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	rec := &entity.RateLimit{UserId: userId, Date: date}
	rec.Id, _ = uuid.Parse(fields["id"])
	rec.Count, _ = strconv.Atoi(fields["count"])
	rec.Limit, _ = strconv.Atoi(fields["limit"])
	rec.LastReset, _ = time.Parse(time.RFC3339Nano, fields["last_reset"])
	rec.NextReset, _ = time.Parse(time.RFC3339Nano, fields["next_reset"])
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, fields["created_at"])
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, fields["updated_at"])
	return rec, nil
}

// DeleteBefore scans day keys; Redis also expires them on its own.
func (r *RateLimitRepository) DeleteBefore(ctx context.Context, date string) (int64, error) {
	var deleted int64
	iter := r.rdb.Scan(ctx, 0, keyPrefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		rest := strings.TrimPrefix(k, keyPrefix)
		i := strings.Index(rest, ":")
		if i < 0 || rest[:i] >= date {
			continue
		}
		n, err := r.rdb.Del(ctx, k).Result()
		if err != nil {
			return deleted, err
		}
		deleted += n
	}
	return deleted, iter.Err()
}
