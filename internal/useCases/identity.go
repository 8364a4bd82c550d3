package useCases

import (
	"strconv"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
)

// ResolveIdentity восстанавливает id автора по ответу админа на пересланное сообщение.
//
// Сначала используется автор из данных о пересылке. Если пользователь скрыл аккаунт,
// Telegram их не отдаёт, и бот отправляет админу уведомление с id текстом
// ответом на пересланную копию; тогда id берётся из первого числа в тексте сообщения.
func ResolveIdentity(msg *domain.Message) (int64, error) {
	replied := msg.ReplyTo
	if replied == nil {
		return 0, domain.ErrNotAReply
	}

	if replied.ForwardOrigin != nil && replied.ForwardOrigin.SenderID != 0 {
		return replied.ForwardOrigin.SenderID, nil
	}

	if digits := firstDigitRun(replied.PlainText()); digits != "" {
		id, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return 0, domain.ErrNoIdentityFound
		}
		return id, nil
	}

	return 0, domain.ErrNoIdentityFound
}

func firstDigitRun(s string) string {
	start := -1
	for i := 0; i < len(s); i++ {
		isDigit := s[i] >= '0' && s[i] <= '9'
		switch {
		case isDigit && start < 0:
			start = i
		case !isDigit && start >= 0:
			return s[start:i]
		}
	}
	if start >= 0 {
		return s[start:]
	}
	return ""
}
