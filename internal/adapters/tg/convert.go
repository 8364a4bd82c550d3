package tg

import (
	"slices"

	"github.com/google/uuid"
	"github.com/zelenin/go-tdlib/client"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
)

// convertUpdate отбирает события, нужные боту; у TDLib нет id обновления, поэтому
// каждому событию выдаём свой для сквозного логирования
func (t *TelegramClient) convertUpdate(update client.Type) (domain.Update, bool) {
	switch upd := update.(type) {
	case *client.UpdateNewMessage:
		if upd.Message == nil || upd.Message.IsOutgoing {
			return domain.Update{}, false
		}
		msg := t.convertMessage(upd.Message, t.needsReply(upd.Message))
		return domain.Update{ID: uuid.NewString(), Message: msg}, true

	case *client.UpdateNewCallbackQuery:
		payload, ok := upd.Payload.(*client.CallbackQueryPayloadData)
		if !ok {
			t.logger.Debug("skip callback without data", "sender_id", upd.SenderUserId)
			return domain.Update{}, false
		}
		return domain.Update{
			ID: uuid.NewString(),
			Callback: &domain.CallbackQuery{
				ID:        int64(upd.Id),
				SenderID:  upd.SenderUserId,
				ChatID:    upd.ChatId,
				MessageID: upd.MessageId,
				Data:      string(payload.Data),
			},
		}, true
	}
	return domain.Update{}, false
}

// needsReply: ReplyTo нужен только командам и ответам админа
func (t *TelegramClient) needsReply(m *client.Message) bool {
	sender, ok := m.SenderId.(*client.MessageSenderUser)
	return ok && sender.UserId == t.adminID
}

// convertMessage переводит сообщение TDLib в доменное. Сообщение, на которое ответили,
// подтягивается одним уровнем: его собственный ответ не нужен.
func (t *TelegramClient) convertMessage(m *client.Message, withReply bool) *domain.Message {
	msg := &domain.Message{
		ID:     m.Id,
		ChatID: m.ChatId,
	}
	if sender, ok := m.SenderId.(*client.MessageSenderUser); ok {
		msg.SenderID = sender.UserId
	}
	if m.ForwardInfo != nil {
		msg.ForwardOrigin = forwardOrigin(m.ForwardInfo.Origin)
	}

	fillContent(msg, m.Content)

	if withReply {
		if _, ok := m.ReplyTo.(*client.MessageReplyToMessage); ok {
			replied, err := t.client.GetRepliedMessage(&client.GetRepliedMessageRequest{
				ChatId:    m.ChatId,
				MessageId: m.Id,
			})
			if err != nil {
				t.logger.Warn("GetRepliedMessage failed", "chat_id", m.ChatId, "message_id", m.Id, "error", err)
			} else {
				msg.ReplyTo = t.convertMessage(replied, false)
			}
		}
	}
	return msg
}

func forwardOrigin(origin client.MessageOrigin) *domain.ForwardOrigin {
	switch o := origin.(type) {
	case *client.MessageOriginUser:
		return &domain.ForwardOrigin{SenderID: o.SenderUserId}
	case *client.MessageOriginHiddenUser:
		return &domain.ForwardOrigin{SenderName: o.SenderName}
	}
	return &domain.ForwardOrigin{}
}

func fillContent(msg *domain.Message, content client.MessageContent) {
	switch c := content.(type) {
	case *client.MessageText:
		msg.Text = richText(c.Text)
	case *client.MessageAnimation:
		if c.Animation != nil {
			msg.Animation = remoteFile(c.Animation.Animation)
		}
		msg.Caption = richText(c.Caption)
	case *client.MessageAudio:
		if c.Audio != nil {
			msg.Audio = remoteFile(c.Audio.Audio)
		}
		msg.Caption = richText(c.Caption)
	case *client.MessageDocument:
		if c.Document != nil {
			msg.Document = remoteFile(c.Document.Document)
		}
		msg.Caption = richText(c.Caption)
	case *client.MessagePhoto:
		if c.Photo != nil {
			msg.Photo = photoSizes(c.Photo.Sizes)
		}
		msg.Caption = richText(c.Caption)
	case *client.MessageSticker:
		if c.Sticker != nil {
			msg.Sticker = remoteFile(c.Sticker.Sticker)
		}
	case *client.MessageVideo:
		if c.Video != nil {
			msg.Video = remoteFile(c.Video.Video)
		}
		msg.Caption = richText(c.Caption)
	case *client.MessageVideoNote:
		if c.VideoNote != nil {
			msg.VideoNote = remoteFile(c.VideoNote.Video)
		}
	case *client.MessageVoiceNote:
		if c.VoiceNote != nil {
			msg.Voice = remoteFile(c.VoiceNote.Voice)
		}
		msg.Caption = richText(c.Caption)
	}
}

func richText(ft *client.FormattedText) *domain.RichText {
	if ft == nil || ft.Text == "" {
		return nil
	}
	return &domain.RichText{
		Plain: ft.Text,
		HTML:  renderHTML(ft.Text, ft.Entities),
	}
}

func remoteFile(f *client.File) *domain.File {
	if f == nil || f.Remote == nil || f.Remote.Id == "" {
		return nil
	}
	return &domain.File{ID: f.Remote.Id}
}

// photoSizes сортирует от меньшего к большему по площади
func photoSizes(sizes []*client.PhotoSize) []domain.PhotoSize {
	out := make([]domain.PhotoSize, 0, len(sizes))
	for _, s := range sizes {
		if s == nil {
			continue
		}
		f := remoteFile(s.Photo)
		if f == nil {
			continue
		}
		out = append(out, domain.PhotoSize{FileID: f.ID, Width: s.Width, Height: s.Height})
	}
	slices.SortStableFunc(out, func(a, b domain.PhotoSize) int {
		return int(int64(a.Width)*int64(a.Height) - int64(b.Width)*int64(b.Height))
	})
	return out
}
