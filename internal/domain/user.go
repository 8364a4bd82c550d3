package domain

// User — пользователь, хоть раз запускавший бота
type User struct {
	ID          int64
	DisplayName string
	Username    string
	Banned      bool
}

// Profile — публичный профиль пользователя из Telegram
type Profile struct {
	ID                int64
	FirstName         string
	Username          string
	LanguageCode      string
	HasHiddenForwards bool
}

func (p *Profile) ToUser() User {
	return User{
		ID:          p.ID,
		DisplayName: p.FirstName,
		Username:    p.Username,
	}
}
