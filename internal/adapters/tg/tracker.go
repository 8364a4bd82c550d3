package tg

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type sendKey struct {
	chatID    int64
	messageID int64
}

type sendResult struct {
	messageID int64
	err       error
}

type earlyResult struct {
	res sendResult
	at  time.Time
}

// sendTracker сводит временный id отправленного сообщения с итоговым результатом.
// Результат может прийти раньше, чем отправитель начнёт ждать: такие храним в early до ttl.
type sendTracker struct {
	mu      sync.Mutex
	waiters map[sendKey]chan sendResult
	early   map[sendKey]earlyResult
	ttl     time.Duration
	now     func() time.Time
}

func newSendTracker(ttl time.Duration) *sendTracker {
	return &sendTracker{
		waiters: make(map[sendKey]chan sendResult),
		early:   make(map[sendKey]earlyResult),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *sendTracker) wait(ctx context.Context, key sendKey, timeout time.Duration) (int64, error) {
	s.mu.Lock()
	if r, ok := s.early[key]; ok {
		delete(s.early, key)
		s.mu.Unlock()
		return r.res.messageID, r.res.err
	}
	ch := make(chan sendResult, 1)
	s.waiters[key] = ch
	s.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.messageID, r.err
	case <-timer.C:
		s.forget(key)
		return 0, fmt.Errorf("%w: message %d in chat %d", ErrSendTimeout, key.messageID, key.chatID)
	case <-ctx.Done():
		s.forget(key)
		return 0, ctx.Err()
	}
}

func (s *sendTracker) resolve(key sendKey, res sendResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.waiters[key]; ok {
		delete(s.waiters, key)
		ch <- res
		return
	}

	s.pruneLocked()
	s.early[key] = earlyResult{res: res, at: s.now()}
}

func (s *sendTracker) forget(key sendKey) {
	s.mu.Lock()
	delete(s.waiters, key)
	s.mu.Unlock()
}

func (s *sendTracker) pruneLocked() {
	deadline := s.now().Add(-s.ttl)
	for k, r := range s.early {
		if r.at.Before(deadline) {
			delete(s.early, k)
		}
	}
}

func (s *sendTracker) pending() (waiting, early int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters), len(s.early)
}
