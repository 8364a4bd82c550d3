package tg

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zelenin/go-tdlib/client"

	"github.com/larriantoniy/tg_relay_bot/internal/config"
	"github.com/larriantoniy/tg_relay_bot/internal/domain"
)

// TelegramClient реализует ports.TelegramClient через TDLib в режиме бота
type TelegramClient struct {
	client      *client.Client
	logger      *slog.Logger
	sends       *sendTracker
	sendTimeout time.Duration
	adminID     int64
	done        chan struct{}
}

func NewBotClient(cfg *config.AppConfig, log *slog.Logger) (*TelegramClient, error) {
	tdParams, err := tdlibParams(cfg)
	if err != nil {
		return nil, err
	}

	if _, err := client.SetLogVerbosityLevel(&client.SetLogVerbosityLevelRequest{
		NewVerbosityLevel: 1,
	}); err != nil {
		log.Error("TDLib SetLogVerbosityLevel", "error", err)
	}

	checkConnectivity(log, cfg.Proxy)

	var opts []client.Option
	if cfg.Proxy.Enabled() {
		opts = append(opts, client.WithProxy(&client.AddProxyRequest{
			Server: cfg.Proxy.Server,
			Port:   cfg.Proxy.Port,
			Enable: true,
			Type: &client.ProxyTypeSocks5{
				Username: cfg.Proxy.Username,
				Password: cfg.Proxy.Password,
			},
		}))
	}

	authorizer := client.BotAuthorizer(tdParams, cfg.BotToken)

	tdCli, err := client.NewClient(authorizer, opts...)
	if err != nil {
		log.Error("TDLib NewClient error", "error", err)
		return nil, err
	}

	me, err := tdCli.GetMe()
	if err != nil {
		log.Error("GetMe failed", "error", err)
		return nil, err
	}

	t := &TelegramClient{
		client:      tdCli,
		logger:      log,
		sends:       newSendTracker(cfg.SendTimeout),
		sendTimeout: cfg.SendTimeout,
		adminID:     cfg.AdminID,
		done:        make(chan struct{}),
	}
	go t.trackSends(tdCli.GetListener())

	log.Info("TDLib bot initialized and authorized", "self_id", me.Id, "username", activeUsername(me))
	return t, nil
}

func (t *TelegramClient) Close() {
	select {
	case <-t.done:
		return
	default:
		close(t.done)
	}
	t.client.Close()
}

// Listen возвращает канал доменных событий: новые входящие сообщения и нажатия inline-кнопок
func (t *TelegramClient) Listen(ctx context.Context) (<-chan domain.Update, error) {
	out := make(chan domain.Update)

	listener := t.client.GetListener()
	go func() {
		defer close(out)
		defer listener.Close()

		for {
			var update client.Type
			select {
			case <-ctx.Done():
				return
			case <-t.done:
				return
			case u, ok := <-listener.Updates:
				if !ok {
					return
				}
				update = u
			}

			upd, ok := t.convertUpdate(update)
			if !ok {
				continue
			}
			select {
			case out <- upd:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// trackSends разбирает результаты отправки: TDLib сначала отдаёт временное сообщение,
// а итоговый id или ошибку присылает отдельным обновлением
func (t *TelegramClient) trackSends(listener *client.Listener) {
	defer listener.Close()

	for {
		select {
		case <-t.done:
			return
		case update, ok := <-listener.Updates:
			if !ok {
				return
			}
			switch upd := update.(type) {
			case *client.UpdateMessageSendSucceeded:
				t.sends.resolve(
					sendKey{chatID: upd.Message.ChatId, messageID: upd.OldMessageId},
					sendResult{messageID: upd.Message.Id},
				)
			case *client.UpdateMessageSendFailed:
				var code int32
				var reason string
				if upd.Error != nil {
					code, reason = upd.Error.Code, upd.Error.Message
				}
				t.sends.resolve(
					sendKey{chatID: upd.Message.ChatId, messageID: upd.OldMessageId},
					sendResult{err: mapSendError(upd.Message.ChatId, code, reason)},
				)
			}
		}
	}
}

func (t *TelegramClient) Send(ctx context.Context, msg domain.OutboundMessage) (int64, error) {
	content, err := t.buildContent(msg)
	if err != nil {
		return 0, err
	}

	req := &client.SendMessageRequest{
		ChatId:              msg.ChatID,
		InputMessageContent: content,
	}
	if markup := keyboard(msg.Rows); markup != nil {
		req.ReplyMarkup = markup
	}
	if msg.ReplyToMessageID != 0 {
		req.ReplyTo = &client.InputMessageReplyToMessage{
			MessageId: msg.ReplyToMessageID,
		}
	}

	sent, err := t.sendMessage(req)
	if err != nil {
		t.logger.Error("SendMessage failed",
			"chat_id", msg.ChatID,
			"kind", msg.Kind.String(),
			"reply_to", msg.ReplyToMessageID,
			"error", err,
		)
		return 0, err
	}
	return t.awaitSent(ctx, sent)
}

// sendMessage отправляет запрос; если TDLib ещё не знает приватный чат, создаёт его и повторяет
func (t *TelegramClient) sendMessage(req *client.SendMessageRequest) (*client.Message, error) {
	sent, err := t.client.SendMessage(req)
	if err == nil {
		return sent, nil
	}
	if req.ChatId > 0 && isChatNotFound(err) {
		if _, cErr := t.client.CreatePrivateChat(&client.CreatePrivateChatRequest{
			UserId: req.ChatId,
		}); cErr == nil {
			sent, err = t.client.SendMessage(req)
			if err == nil {
				return sent, nil
			}
		}
	}
	return nil, t.wrapError(req.ChatId, err)
}

func (t *TelegramClient) ForwardMessage(ctx context.Context, fromChatID, messageID, toChatID int64) (int64, error) {
	res, err := t.client.ForwardMessages(&client.ForwardMessagesRequest{
		ChatId:     toChatID,
		FromChatId: fromChatID,
		MessageIds: []int64{messageID},
	})
	if err != nil {
		t.logger.Error("ForwardMessages failed",
			"from_chat_id", fromChatID,
			"message_id", messageID,
			"to_chat_id", toChatID,
			"error", err,
		)
		return 0, t.wrapError(toChatID, err)
	}
	if len(res.Messages) == 0 || res.Messages[0] == nil {
		return 0, fmt.Errorf("message %d from chat %d can't be forwarded", messageID, fromChatID)
	}
	return t.awaitSent(ctx, res.Messages[0])
}

func (t *TelegramClient) EditMessage(_ context.Context, chatID, messageID int64, text string, rows []domain.ButtonRow) error {
	req := &client.EditMessageTextRequest{
		ChatId:    chatID,
		MessageId: messageID,
		InputMessageContent: &client.InputMessageText{
			Text: t.formatted(text),
		},
	}
	if markup := keyboard(rows); markup != nil {
		req.ReplyMarkup = markup
	}

	if _, err := t.client.EditMessageText(req); err != nil {
		t.logger.Error("EditMessageText failed", "chat_id", chatID, "message_id", messageID, "error", err)
		return t.wrapError(chatID, err)
	}
	return nil
}

func (t *TelegramClient) AnswerCallback(_ context.Context, queryID int64) error {
	_, err := t.client.AnswerCallbackQuery(&client.AnswerCallbackQueryRequest{
		CallbackQueryId: client.JsonInt64(queryID),
	})
	if err != nil {
		return fmt.Errorf("answer callback %d: %w", queryID, err)
	}
	return nil
}

func (t *TelegramClient) FetchProfile(_ context.Context, userID int64) (*domain.Profile, error) {
	u, err := t.client.GetUser(&client.GetUserRequest{UserId: userID})
	if err != nil {
		if code, _, ok := tdError(err); ok && (code == 400 || code == 404) {
			return nil, fmt.Errorf("user %d: %w", userID, domain.ErrProfileNotFound)
		}
		return nil, fmt.Errorf("GetUser %d: %w", userID, err)
	}
	if _, deleted := u.Type.(*client.UserTypeDeleted); deleted {
		return nil, fmt.Errorf("user %d deleted: %w", userID, domain.ErrProfileNotFound)
	}

	p := &domain.Profile{
		ID:           u.Id,
		FirstName:    u.FirstName,
		Username:     activeUsername(u),
		LanguageCode: u.LanguageCode,
	}

	full, err := t.client.GetUserFullInfo(&client.GetUserFullInfoRequest{UserId: userID})
	if err != nil {
		t.logger.Warn("GetUserFullInfo failed", "user_id", userID, "error", err)
		return p, nil
	}
	p.HasHiddenForwards = full.HasPrivateForwards
	return p, nil
}

func (t *TelegramClient) SetCommands(_ context.Context, cmds []domain.BotCommand) error {
	list := make([]*client.BotCommand, 0, len(cmds))
	for _, c := range cmds {
		list = append(list, &client.BotCommand{Command: c.Command, Description: c.Description})
	}

	_, err := t.client.SetCommands(&client.SetCommandsRequest{
		Scope:    &client.BotCommandScopeAllPrivateChats{},
		Commands: list,
	})
	if err != nil {
		return fmt.Errorf("set commands: %w", err)
	}
	t.logger.Info("bot commands registered", "count", len(list))
	return nil
}

// SendFile ждёт окончания загрузки: после возврата файл можно удалять
func (t *TelegramClient) SendFile(ctx context.Context, chatID int64, path, caption string) error {
	sent, err := t.sendMessage(&client.SendMessageRequest{
		ChatId: chatID,
		InputMessageContent: &client.InputMessageDocument{
			Document: &client.InputFileLocal{Path: path},
			Caption:  t.formatted(caption),
		},
	})
	if err != nil {
		return err
	}
	_, err = t.awaitSent(ctx, sent)
	return err
}

func (t *TelegramClient) awaitSent(ctx context.Context, m *client.Message) (int64, error) {
	switch state := m.SendingState.(type) {
	case nil:
		return m.Id, nil
	case *client.MessageSendingStateFailed:
		var code int32
		var reason string
		if state.Error != nil {
			code, reason = state.Error.Code, state.Error.Message
		}
		return 0, mapSendError(m.ChatId, code, reason)
	}
	return t.sends.wait(ctx, sendKey{chatID: m.ChatId, messageID: m.Id}, t.sendTimeout)
}

func (t *TelegramClient) buildContent(msg domain.OutboundMessage) (client.InputMessageContent, error) {
	remote := func() client.InputFile { return &client.InputFileRemote{Id: msg.MediaID} }

	switch msg.Kind {
	case domain.KindText:
		return &client.InputMessageText{Text: t.formatted(msg.Text), ClearDraft: true}, nil
	case domain.KindAnimation:
		return &client.InputMessageAnimation{
			Animation:  remote(),
			Caption:    t.formatted(msg.Text),
			HasSpoiler: msg.Spoiler,
		}, nil
	case domain.KindAudio:
		return &client.InputMessageAudio{Audio: remote(), Caption: t.formatted(msg.Text)}, nil
	case domain.KindDocument:
		return &client.InputMessageDocument{Document: remote(), Caption: t.formatted(msg.Text)}, nil
	case domain.KindPhoto:
		return &client.InputMessagePhoto{
			Photo:      remote(),
			Caption:    t.formatted(msg.Text),
			HasSpoiler: msg.Spoiler,
		}, nil
	case domain.KindSticker:
		return &client.InputMessageSticker{Sticker: remote()}, nil
	case domain.KindVideo:
		return &client.InputMessageVideo{
			Video:      remote(),
			Caption:    t.formatted(msg.Text),
			HasSpoiler: msg.Spoiler,
		}, nil
	case domain.KindVideoNote:
		return &client.InputMessageVideoNote{VideoNote: remote()}, nil
	case domain.KindVoice:
		return &client.InputMessageVoiceNote{VoiceNote: remote(), Caption: t.formatted(msg.Text)}, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedMessageKind, msg.Kind)
}

// formatted разбирает HTML-разметку; битую разметку отправляем как есть
func (t *TelegramClient) formatted(text string) *client.FormattedText {
	if text == "" {
		return &client.FormattedText{}
	}
	ft, err := client.ParseTextEntities(&client.ParseTextEntitiesRequest{
		Text:      text,
		ParseMode: &client.TextParseModeHTML{},
	})
	if err != nil {
		t.logger.Warn("ParseTextEntities failed, sending plain text", "error", err)
		return &client.FormattedText{Text: text}
	}
	return ft
}

func (t *TelegramClient) wrapError(chatID int64, err error) error {
	code, reason, ok := tdError(err)
	if !ok {
		return err
	}
	if isTooManyRequests(err) {
		t.logger.Error("rate-limited: too many requests", "chat_id", chatID, "error", err)
	}
	return mapSendError(chatID, code, reason)
}

func keyboard(rows []domain.ButtonRow) client.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}

	kb := make([][]*client.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		line := make([]*client.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			btn := &client.InlineKeyboardButton{Text: b.Text}
			if b.URL != "" {
				btn.Type = &client.InlineKeyboardButtonTypeUrl{Url: b.URL}
			} else {
				btn.Type = &client.InlineKeyboardButtonTypeCallback{Data: []byte(b.Data)}
			}
			line = append(line, btn)
		}
		kb = append(kb, line)
	}
	return &client.ReplyMarkupInlineKeyboard{Rows: kb}
}

func activeUsername(u *client.User) string {
	if u != nil && u.Usernames != nil && len(u.Usernames.ActiveUsernames) > 0 {
		return u.Usernames.ActiveUsernames[0]
	}
	return ""
}
