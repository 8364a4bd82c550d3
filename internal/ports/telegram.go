package ports

import (
	"context"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
)

// TelegramClient определяет интерфейс для работы с Telegram
// Реализуется конкретными адаптерами (TDLib, Bot API и т.д.).
type TelegramClient interface {
	// Listen возвращает канал входящих событий; канал закрывается при остановке клиента
	Listen(ctx context.Context) (<-chan domain.Update, error)
	// Send отправляет сообщение и возвращает его id после подтверждения доставки.
	// Отказ Telegram доставить сообщение возвращается как *domain.DeliveryError.
	Send(ctx context.Context, msg domain.OutboundMessage) (int64, error)
	// ForwardMessage пересылает сообщение и возвращает id копии в чате назначения
	ForwardMessage(ctx context.Context, fromChatID, messageID, toChatID int64) (int64, error)
	// EditMessage заменяет текст и клавиатуру сообщения бота
	EditMessage(ctx context.Context, chatID, messageID int64, text string, rows []domain.ButtonRow) error
	AnswerCallback(ctx context.Context, queryID int64) error
	// FetchProfile возвращает профиль пользователя или domain.ErrProfileNotFound
	FetchProfile(ctx context.Context, userID int64) (*domain.Profile, error)
	SetCommands(ctx context.Context, cmds []domain.BotCommand) error
	// SendFile отправляет локальный файл документом
	SendFile(ctx context.Context, chatID int64, path, caption string) error
	Close()
}
