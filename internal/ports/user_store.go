package ports

import (
	"context"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
)

type UserStore interface {
	// UpsertUser регистрирует пользователя; повторная регистрация ничего не меняет
	UpsertUser(ctx context.Context, u domain.User) error
	IsBanned(ctx context.Context, userID int64) (bool, error)
	SetBanned(ctx context.Context, userID int64, banned bool) error
	// ListBanned возвращает id забаненных по возрастанию
	ListBanned(ctx context.Context) ([]int64, error)
	CountUsers(ctx context.Context) (int, error)
	Close() error
}

// ConversationStore хранит состояние диалога по id пользователя.
// Update выполняет read-modify-write атомарно для одного id.
type ConversationStore interface {
	Get(ctx context.Context, userID int64) (domain.ConversationState, error)
	Update(ctx context.Context, userID int64, fn func(domain.ConversationState) domain.ConversationState) (prev, next domain.ConversationState, err error)
}
