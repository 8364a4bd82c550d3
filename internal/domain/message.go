package domain

// RichText хранит текст сообщения в двух видах: как есть и с HTML-разметкой сущностей
type RichText struct {
	Plain string
	HTML  string
}

// File ссылается на медиа на стороне Telegram (remote file id)
type File struct {
	ID string
}

type PhotoSize struct {
	FileID string
	Width  int32
	Height int32
}

// ForwardOrigin описывает автора пересланного сообщения.
// SenderID == 0, если автор скрыл аккаунт в настройках приватности.
type ForwardOrigin struct {
	SenderID   int64
	SenderName string
}

// Message описывает входящее сообщение из Telegram.
// Из полей медиа заполнено не больше одного; Photo упорядочен от меньшего размера к большему.
type Message struct {
	ID       int64
	ChatID   int64
	SenderID int64

	Animation *File
	Audio     *File
	Document  *File
	Photo     []PhotoSize
	Sticker   *File
	Video     *File
	VideoNote *File
	Voice     *File
	Text      *RichText
	Caption   *RichText

	ForwardOrigin *ForwardOrigin
	ReplyTo       *Message
}

// IsPrivate сообщает, что это личный чат с ботом: id чата совпадает с id отправителя
func (m *Message) IsPrivate() bool {
	return m.ChatID > 0 && m.ChatID == m.SenderID
}

// PlainText возвращает текст сообщения без разметки или пустую строку
func (m *Message) PlainText() string {
	if m.Text == nil {
		return ""
	}
	return m.Text.Plain
}

type CallbackQuery struct {
	ID        int64
	SenderID  int64
	ChatID    int64
	MessageID int64
	Data      string
}

// Update описывает одно входящее событие. Заполнено ровно одно из Message / Callback.
type Update struct {
	ID       string
	Message  *Message
	Callback *CallbackQuery
}

// SenderID возвращает автора события
func (u Update) SenderID() int64 {
	switch {
	case u.Message != nil:
		return u.Message.SenderID
	case u.Callback != nil:
		return u.Callback.SenderID
	}
	return 0
}
