package useCases

import (
	"context"
	"fmt"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
	"github.com/larriantoniy/tg_relay_bot/internal/ports"
)

// Conversations ведёт машину состояний диалога: Idle <-> Commenting
type Conversations struct {
	store ports.ConversationStore
	users ports.UserStore
}

func NewConversations(store ports.ConversationStore, users ports.UserStore) *Conversations {
	return &Conversations{store: store, users: users}
}

// Start переводит Idle -> Commenting. Возвращает false, если пользователь уже не в Idle
// (повторное нажатие кнопки).
func (c *Conversations) Start(ctx context.Context, userID int64) (bool, error) {
	prev, next, err := c.store.Update(ctx, userID, func(s domain.ConversationState) domain.ConversationState {
		if s != domain.StateIdle {
			return s
		}
		return domain.StateCommenting
	})
	if err != nil {
		return false, fmt.Errorf("start conversation %d: %w", userID, err)
	}
	return prev == domain.StateIdle && next == domain.StateCommenting, nil
}

// End переводит пользователя в Idle из любого состояния
func (c *Conversations) End(ctx context.Context, userID int64) error {
	_, _, err := c.store.Update(ctx, userID, func(domain.ConversationState) domain.ConversationState {
		return domain.StateIdle
	})
	if err != nil {
		return fmt.Errorf("end conversation %d: %w", userID, err)
	}
	return nil
}

func (c *Conversations) State(ctx context.Context, userID int64) (domain.ConversationState, error) {
	return c.store.Get(ctx, userID)
}

// CanRelay: сообщение пользователя уходит админу, только если он в Commenting и не забанен
func (c *Conversations) CanRelay(ctx context.Context, userID int64) (bool, error) {
	state, err := c.store.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("get state %d: %w", userID, err)
	}
	if state != domain.StateCommenting {
		return false, nil
	}

	banned, err := c.users.IsBanned(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("check ban %d: %w", userID, err)
	}
	return !banned, nil
}
