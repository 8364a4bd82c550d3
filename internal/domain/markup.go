package domain

// Button — inline-кнопка. Для кнопок из разметки админа заполнен URL,
// для кнопок бота (старт/назад) — Data.
type Button struct {
	Text string
	URL  string
	Data string
}

type ButtonRow []Button

// ParsedMarkup: результат разбора текста с кнопками
type ParsedMarkup struct {
	Text string
	Rows []ButtonRow
}

// MessageKind — вид сообщения, определяющий форму исходящей отправки
type MessageKind int

const (
	KindText MessageKind = iota
	KindAnimation
	KindAudio
	KindDocument
	KindPhoto
	KindSticker
	KindVideo
	KindVideoNote
	KindVoice
)

func (k MessageKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindAnimation:
		return "animation"
	case KindAudio:
		return "audio"
	case KindDocument:
		return "document"
	case KindPhoto:
		return "photo"
	case KindSticker:
		return "sticker"
	case KindVideo:
		return "video"
	case KindVideoNote:
		return "video_note"
	case KindVoice:
		return "voice"
	}
	return "unknown"
}

// ClassifiedMessage — сообщение, сведённое к одному виду.
// Caption: для Text никогда не nil, для Sticker/VideoNote всегда "", для остальных nil без подписи.
// MediaID пуст для Text.
type ClassifiedMessage struct {
	Kind    MessageKind
	Caption *string
	MediaID string
}

// OutboundMessage описывает параметры исходящей отправки через шлюз
type OutboundMessage struct {
	ChatID           int64
	Kind             MessageKind
	MediaID          string
	Text             string
	Rows             []ButtonRow
	Spoiler          bool
	ReplyToMessageID int64
}

type BotCommand struct {
	Command     string
	Description string
}
