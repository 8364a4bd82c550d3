package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
)

const lockStripes = 64

// Store хранит состояния диалогов в bigcache: в памяти процесса, с вытеснением по TTL.
// Read-modify-write одного id выполняется под своим мьютексом из набора полос.
type Store struct {
	cache *bigcache.BigCache
	locks [lockStripes]sync.Mutex
}

func NewStore(ctx context.Context, ttl time.Duration) (*Store, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.CleanWindow = time.Minute
	cfg.Verbose = false

	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bigcache: %w", err)
	}
	return &Store{cache: cache}, nil
}

func (s *Store) Get(_ context.Context, userID int64) (domain.ConversationState, error) {
	l := s.lock(userID)
	l.Lock()
	defer l.Unlock()
	return s.get(userID)
}

func (s *Store) Update(
	_ context.Context,
	userID int64,
	fn func(domain.ConversationState) domain.ConversationState,
) (domain.ConversationState, domain.ConversationState, error) {
	l := s.lock(userID)
	l.Lock()
	defer l.Unlock()

	prev, err := s.get(userID)
	if err != nil {
		return prev, prev, err
	}
	next := fn(prev)
	if next == prev {
		return prev, next, nil
	}

	if next == domain.StateIdle {
		// Idle по умолчанию, хранить незачем
		if err := s.cache.Delete(key(userID)); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
			return prev, prev, fmt.Errorf("delete state: %w", err)
		}
		return prev, next, nil
	}
	if err := s.cache.Set(key(userID), []byte{byte(next)}); err != nil {
		return prev, prev, fmt.Errorf("write state: %w", err)
	}
	return prev, next, nil
}

func (s *Store) Close() error {
	return s.cache.Close()
}

func (s *Store) get(userID int64) (domain.ConversationState, error) {
	b, err := s.cache.Get(key(userID))
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return domain.StateIdle, nil
		}
		return domain.StateIdle, fmt.Errorf("read state: %w", err)
	}
	if len(b) != 1 {
		return domain.StateIdle, fmt.Errorf("corrupted state for %d", userID)
	}
	return domain.ConversationState(b[0]), nil
}

func (s *Store) lock(userID int64) *sync.Mutex {
	idx := userID % lockStripes
	if idx < 0 {
		idx = -idx
	}
	return &s.locks[idx]
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
