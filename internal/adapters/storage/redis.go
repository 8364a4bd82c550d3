package storage

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
)

// RedisUserStore: множество <prefix>:users с id, hash <prefix>:user:<id> с профилем,
// множество <prefix>:banned.
type RedisUserStore struct {
	client *redis.Client
	prefix string
	log    *slog.Logger
}

func NewRedisUserStore(ctx context.Context, url, prefix string, log *slog.Logger) (*RedisUserStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("redis connected", "addr", opts.Addr, "db", opts.DB)

	return &RedisUserStore{client: client, prefix: prefix, log: log}, nil
}

func (s *RedisUserStore) UpsertUser(ctx context.Context, u domain.User) error {
	added, err := s.client.SAdd(ctx, s.usersKey(), u.ID).Result()
	if err != nil {
		return fmt.Errorf("sadd user %d: %w", u.ID, err)
	}
	if added == 0 {
		return nil
	}

	if err := s.client.HSet(ctx, s.userKey(u.ID),
		"display_name", u.DisplayName,
		"username", u.Username,
	).Err(); err != nil {
		return fmt.Errorf("hset user %d: %w", u.ID, err)
	}
	s.log.Info("user registered", "user_id", u.ID)
	return nil
}

func (s *RedisUserStore) IsBanned(ctx context.Context, userID int64) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.bannedKey(), userID).Result()
	if err != nil {
		return false, fmt.Errorf("sismember %d: %w", userID, err)
	}
	return ok, nil
}

func (s *RedisUserStore) SetBanned(ctx context.Context, userID int64, banned bool) error {
	var err error
	if banned {
		err = s.client.SAdd(ctx, s.bannedKey(), userID).Err()
	} else {
		err = s.client.SRem(ctx, s.bannedKey(), userID).Err()
	}
	if err != nil {
		return fmt.Errorf("set banned %d=%t: %w", userID, banned, err)
	}
	return nil
}

func (s *RedisUserStore) ListBanned(ctx context.Context) ([]int64, error) {
	members, err := s.client.SMembers(ctx, s.bannedKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers banned: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			s.log.Warn("skip malformed banned id", "value", m)
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *RedisUserStore) CountUsers(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, s.usersKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("scard users: %w", err)
	}
	return int(n), nil
}

func (s *RedisUserStore) Close() error {
	return s.client.Close()
}

func (s *RedisUserStore) usersKey() string  { return s.prefix + ":users" }
func (s *RedisUserStore) bannedKey() string { return s.prefix + ":banned" }

func (s *RedisUserStore) userKey(id int64) string {
	return s.prefix + ":user:" + strconv.FormatInt(id, 10)
}
