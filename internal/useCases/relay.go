package useCases

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/larriantoniy/tg_relay_bot/internal/config"
	"github.com/larriantoniy/tg_relay_bot/internal/domain"
	"github.com/larriantoniy/tg_relay_bot/internal/ports"
)

const (
	callbackStart = "start-message"
	callbackBack  = "back-start"
)

// Relay пересылает сообщения пользователей админу и ответы админа обратно
type Relay struct {
	log   *slog.Logger
	tg    ports.TelegramClient
	users ports.UserStore
	conv  *Conversations
	texts *config.Strings

	adminID  int64
	mediaURL string
}

func NewRelay(
	log *slog.Logger,
	tg ports.TelegramClient,
	users ports.UserStore,
	conv *Conversations,
	texts *config.Strings,
	adminID int64,
	mediaURL string,
) *Relay {
	return &Relay{
		log:      log,
		tg:       tg,
		users:    users,
		conv:     conv,
		texts:    texts,
		adminID:  adminID,
		mediaURL: mediaURL,
	}
}

// Commands возвращает команды бота для меню личных чатов
func (r *Relay) Commands() []domain.BotCommand {
	out := make([]domain.BotCommand, 0, len(r.texts.Commands))
	for _, c := range r.texts.Commands {
		out = append(out, domain.BotCommand{Command: c.Command, Description: c.Description})
	}
	return out
}

func (r *Relay) HandleUpdate(ctx context.Context, upd domain.Update) error {
	log := r.log.With("update_id", upd.ID, "user_id", upd.SenderID())

	switch {
	case upd.Callback != nil:
		return r.handleCallback(ctx, log, upd.Callback)
	case upd.Message != nil:
		return r.handleMessage(ctx, log, upd.Message)
	}
	return nil
}

func (r *Relay) handleMessage(ctx context.Context, log *slog.Logger, msg *domain.Message) error {
	if !msg.IsPrivate() {
		log.Debug("skip non-private message", "chat_id", msg.ChatID)
		return nil
	}

	cmd, isCommand := parseCommand(msg)

	if msg.SenderID == r.adminID {
		if !isCommand {
			return r.ReplyToUser(ctx, log, msg)
		}
		switch cmd {
		case "ban":
			return r.Ban(ctx, log, msg)
		case "unban":
			return r.Unban(ctx, log, msg)
		case "listbanned":
			return r.ListBanned(ctx, log, msg)
		case "subs":
			return r.Stats(ctx, log, msg)
		case "start", "info", "help":
			return r.Info(ctx, log, msg)
		}
		log.Debug("unknown admin command", "command", cmd)
		return nil
	}

	if isCommand {
		switch cmd {
		case "start", "info", "help":
			return r.Info(ctx, log, msg)
		}
	}
	return r.ForwardToAdmin(ctx, log, msg)
}

// Info шлёт приветствие с кнопкой начала диалога. Забаненный получает отказ и не регистрируется.
func (r *Relay) Info(ctx context.Context, log *slog.Logger, msg *domain.Message) error {
	profile, err := r.tg.FetchProfile(ctx, msg.SenderID)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}
	loc := r.texts.Locale(profile.LanguageCode)

	banned, err := r.users.IsBanned(ctx, msg.SenderID)
	if err != nil {
		return fmt.Errorf("check ban: %w", err)
	}
	if banned {
		log.Info("banned user opened the bot")
		return r.notify(ctx, log, domain.OutboundMessage{ChatID: msg.ChatID, Text: loc.NotAllowed})
	}

	if err := r.users.UpsertUser(ctx, profile.ToUser()); err != nil {
		return fmt.Errorf("register user: %w", err)
	}

	return r.notify(ctx, log, domain.OutboundMessage{
		ChatID: msg.ChatID,
		Text:   fmt.Sprintf(loc.Start, r.mediaURL, html.EscapeString(profile.FirstName)),
		Rows:   []domain.ButtonRow{{{Text: loc.StartButton, Data: callbackStart}}},
	})
}

func (r *Relay) handleCallback(ctx context.Context, log *slog.Logger, cb *domain.CallbackQuery) error {
	if err := r.tg.AnswerCallback(ctx, cb.ID); err != nil {
		log.Warn("AnswerCallback failed", "error", err)
	}

	switch cb.Data {
	case callbackStart:
		return r.StartConversation(ctx, log, cb)
	case callbackBack:
		return r.EndConversation(ctx, log, cb)
	}
	log.Debug("unknown callback", "data", cb.Data)
	return nil
}

// StartConversation открывает диалог; повторное нажатие игнорируется
func (r *Relay) StartConversation(ctx context.Context, log *slog.Logger, cb *domain.CallbackQuery) error {
	started, err := r.conv.Start(ctx, cb.SenderID)
	if err != nil {
		return err
	}
	if !started {
		log.Debug("conversation already started")
		return nil
	}

	profile, err := r.tg.FetchProfile(ctx, cb.SenderID)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}
	loc := r.texts.Locale(profile.LanguageCode)

	log.Info("conversation started")
	return r.tg.EditMessage(ctx, cb.ChatID, cb.MessageID,
		fmt.Sprintf(loc.StartConversation, r.mediaURL),
		[]domain.ButtonRow{{{Text: loc.BackButton, Data: callbackBack}}},
	)
}

func (r *Relay) EndConversation(ctx context.Context, log *slog.Logger, cb *domain.CallbackQuery) error {
	if err := r.conv.End(ctx, cb.SenderID); err != nil {
		return err
	}

	profile, err := r.tg.FetchProfile(ctx, cb.SenderID)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}
	loc := r.texts.Locale(profile.LanguageCode)

	log.Info("conversation ended")
	return r.tg.EditMessage(ctx, cb.ChatID, cb.MessageID,
		fmt.Sprintf(loc.Start, r.mediaURL, html.EscapeString(profile.FirstName)),
		[]domain.ButtonRow{{{Text: loc.StartButton, Data: callbackStart}}},
	)
}

// ForwardToAdmin пересылает сообщение админу, если диалог открыт и пользователь не забанен.
// Если пользователь скрыл аккаунт при пересылке, ответом на копию уходит уведомление с его id.
func (r *Relay) ForwardToAdmin(ctx context.Context, log *slog.Logger, msg *domain.Message) error {
	ok, err := r.conv.CanRelay(ctx, msg.SenderID)
	if err != nil {
		return err
	}
	if !ok {
		log.Debug("message dropped by conversation gate")
		return nil
	}

	fwdID, err := r.tg.ForwardMessage(ctx, msg.ChatID, msg.ID, r.adminID)
	if err != nil {
		if errors.Is(err, domain.ErrDelivery) {
			log.Warn("forward to admin rejected", "error", err)
			return nil
		}
		return fmt.Errorf("forward message: %w", err)
	}
	log.Info("message forwarded to admin", "message_id", msg.ID, "forward_id", fwdID)

	profile, err := r.tg.FetchProfile(ctx, msg.SenderID)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}
	if !profile.HasHiddenForwards {
		return nil
	}

	return r.notify(ctx, log, domain.OutboundMessage{
		ChatID:           r.adminID,
		Text:             fmt.Sprintf(r.texts.Admin.HasPrivateForwards, msg.SenderID),
		ReplyToMessageID: fwdID,
	})
}

// ReplyToUser отправляет ответ админа автору пересланного сообщения
func (r *Relay) ReplyToUser(ctx context.Context, log *slog.Logger, msg *domain.Message) error {
	userID, err := ResolveIdentity(msg)
	if err != nil {
		return r.identityFailure(ctx, log, msg, err)
	}
	log = log.With("recipient_id", userID)

	classified, err := Classify(msg)
	if err != nil {
		log.Warn("admin reply not sent", "error", err)
		return nil
	}

	out, err := BuildOutbound(userID, classified)
	if err != nil {
		log.Warn("admin reply not sent", "kind", classified.Kind.String(), "error", err)
		return nil
	}

	// Telegram не принимает пустой текст, кнопки без текста не отправить
	if out.Kind == domain.KindText && strings.TrimSpace(out.Text) == "" {
		log.Warn("admin reply not sent: empty text", "rows", len(out.Rows))
		return nil
	}

	if _, err := r.tg.Send(ctx, out); err != nil {
		if errors.Is(err, domain.ErrDelivery) {
			log.Info("The message couldn't be sent to user", "error", err)
			return nil
		}
		return fmt.Errorf("send reply: %w", err)
	}

	log.Info("reply delivered", "kind", classified.Kind.String(), "rows", len(out.Rows))
	return nil
}

// BuildOutbound задаёт форму отправки для каждого вида сообщения.
// Подпись разбирается на кнопки только у видов, у которых она бывает.
func BuildOutbound(chatID int64, c domain.ClassifiedMessage) (domain.OutboundMessage, error) {
	out := domain.OutboundMessage{ChatID: chatID, Kind: c.Kind}

	switch c.Kind {
	case domain.KindAudio, domain.KindVoice, domain.KindDocument:
		parsed := ParseButtons(c.Caption)
		out.MediaID = c.MediaID
		out.Text = parsed.Text
		out.Rows = parsed.Rows
	case domain.KindSticker, domain.KindVideoNote:
		out.MediaID = c.MediaID
	case domain.KindText:
		parsed := ParseButtons(c.Caption)
		out.Text = parsed.Text
		out.Rows = parsed.Rows
	case domain.KindAnimation, domain.KindPhoto, domain.KindVideo:
		parsed := ParseButtons(c.Caption)
		out.MediaID = c.MediaID
		out.Text = parsed.Text
		out.Rows = parsed.Rows
		out.Spoiler = true
	default:
		return domain.OutboundMessage{}, domain.ErrUnsupportedMessageKind
	}
	return out, nil
}

func (r *Relay) identityFailure(ctx context.Context, log *slog.Logger, msg *domain.Message, err error) error {
	var text string
	switch {
	case errors.Is(err, domain.ErrNotAReply):
		text = r.texts.Admin.NoMessage
	case errors.Is(err, domain.ErrNoIdentityFound):
		text = r.texts.Admin.UserNotFound
	default:
		return err
	}
	log.Info("identity not resolved", "error", err)
	return r.notify(ctx, log, domain.OutboundMessage{ChatID: msg.ChatID, Text: text})
}

// notify отправляет служебное сообщение; отказ доставки только логируется
func (r *Relay) notify(ctx context.Context, log *slog.Logger, out domain.OutboundMessage) error {
	if _, err := r.tg.Send(ctx, out); err != nil {
		if errors.Is(err, domain.ErrDelivery) {
			log.Info("notice not delivered", "chat_id", out.ChatID, "error", err)
			return nil
		}
		return fmt.Errorf("send notice: %w", err)
	}
	return nil
}

// parseCommand возвращает имя команды в нижнем регистре без "/" и "@bot"
func parseCommand(msg *domain.Message) (string, bool) {
	if msg.Text == nil || !strings.HasPrefix(msg.Text.Plain, "/") {
		return "", false
	}
	word := strings.Fields(msg.Text.Plain)[0][1:]
	if i := strings.IndexByte(word, '@'); i >= 0 {
		word = word[:i]
	}
	if word == "" {
		return "", false
	}
	return strings.ToLower(word), true
}
