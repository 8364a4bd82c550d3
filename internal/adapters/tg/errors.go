package tg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zelenin/go-tdlib/client"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
)

var (
	ErrRateLimited = errors.New("tdlib: too many requests")
	ErrSendTimeout = errors.New("tdlib: no send confirmation")
)

// сообщения 400, означающие, что пользователь недоступен для бота
var undeliverable = []string{
	"chat not found",
	"peer_id_invalid",
	"user_is_blocked",
	"bot was blocked",
	"user is deactivated",
	"input_user_deactivated",
	"have no write access",
	"have no rights to send",
}

// tdError достаёт код и текст ошибки TDLib
func tdError(err error) (int32, string, bool) {
	if err == nil {
		return 0, "", false
	}

	var tdErr *client.Error
	if errors.As(err, &tdErr) {
		return tdErr.Code, tdErr.Message, true
	}

	// ошибка ответа может прийти строкой "<code> <message>"
	head, tail, found := strings.Cut(err.Error(), " ")
	if !found {
		return 0, "", false
	}
	code, convErr := strconv.ParseInt(head, 10, 32)
	if convErr != nil {
		return 0, "", false
	}
	return int32(code), tail, true
}

func isTooManyRequests(err error) bool {
	code, msg, ok := tdError(err)
	if !ok {
		return false
	}
	return code == 429 || strings.Contains(strings.ToLower(msg), "too many requests")
}

func isChatNotFound(err error) bool {
	code, msg, ok := tdError(err)
	return ok && code == 400 && strings.Contains(strings.ToLower(msg), "chat not found")
}

// mapSendError переводит отказ TDLib в доменную ошибку
func mapSendError(chatID int64, code int32, reason string) error {
	lower := strings.ToLower(reason)

	if code == 429 || strings.Contains(lower, "too many requests") {
		return fmt.Errorf("%w: %s", ErrRateLimited, reason)
	}
	if code == 403 {
		return &domain.DeliveryError{ChatID: chatID, Code: code, Reason: reason}
	}
	if code == 400 {
		for _, marker := range undeliverable {
			if strings.Contains(lower, marker) {
				return &domain.DeliveryError{ChatID: chatID, Code: code, Reason: reason}
			}
		}
	}
	return fmt.Errorf("tdlib error %d: %s", code, reason)
}
