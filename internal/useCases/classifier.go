package useCases

import (
	"github.com/larriantoniy/tg_relay_bot/internal/domain"
)

// Classify сводит входящее сообщение к одному виду.
// Порядок проверок совпадает с порядком видов в domain: анимация раньше документа и т.д.
func Classify(msg *domain.Message) (domain.ClassifiedMessage, error) {
	switch {
	case msg.Animation != nil:
		return media(domain.KindAnimation, msg.Animation.ID, captionOf(msg)), nil
	case msg.Audio != nil:
		return media(domain.KindAudio, msg.Audio.ID, captionOf(msg)), nil
	case msg.Document != nil:
		return media(domain.KindDocument, msg.Document.ID, captionOf(msg)), nil
	case len(msg.Photo) > 0:
		// самый большой размер — последний
		largest := msg.Photo[len(msg.Photo)-1]
		return media(domain.KindPhoto, largest.FileID, captionOf(msg)), nil
	case msg.Sticker != nil:
		return media(domain.KindSticker, msg.Sticker.ID, ptr("")), nil
	case msg.Video != nil:
		return media(domain.KindVideo, msg.Video.ID, captionOf(msg)), nil
	case msg.VideoNote != nil:
		return media(domain.KindVideoNote, msg.VideoNote.ID, ptr("")), nil
	case msg.Voice != nil:
		return media(domain.KindVoice, msg.Voice.ID, captionOf(msg)), nil
	case msg.Text != nil:
		text := msg.Text.HTML
		if text == "" {
			text = msg.Text.Plain
		}
		return domain.ClassifiedMessage{Kind: domain.KindText, Caption: &text}, nil
	}
	return domain.ClassifiedMessage{}, domain.ErrUnsupportedMessageKind
}

func media(kind domain.MessageKind, fileID string, caption *string) domain.ClassifiedMessage {
	return domain.ClassifiedMessage{Kind: kind, Caption: caption, MediaID: fileID}
}

func captionOf(msg *domain.Message) *string {
	if msg.Caption == nil {
		return nil
	}
	c := msg.Caption.HTML
	return &c
}

func ptr[T any](v T) *T {
	return &v
}
