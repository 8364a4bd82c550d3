package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotAReply              = errors.New("command is not a reply to a message")
	ErrNoIdentityFound        = errors.New("no sender identity in replied message")
	ErrUnsupportedMessageKind = errors.New("unsupported message kind")
	ErrAlreadyBanned          = errors.New("user is already banned")
	ErrNotBanned              = errors.New("user is not banned")
	ErrProfileNotFound        = errors.New("user profile not found")
	ErrDelivery               = errors.New("message delivery rejected")
)

// DeliveryError — Telegram отказался доставить сообщение (бот заблокирован, чат удалён и т.п.)
type DeliveryError struct {
	ChatID int64
	Code   int32
	Reason string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %d rejected: %d %s", e.ChatID, e.Code, e.Reason)
}

func (e *DeliveryError) Unwrap() error {
	return ErrDelivery
}
