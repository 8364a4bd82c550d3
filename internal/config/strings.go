package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed strings.yml
var defaultStrings []byte

// Locale содержит тексты, которые видит пользователь. Плейсхолдеры в формате fmt.
type Locale struct {
	Start             string `yaml:"start"`
	StartConversation string `yaml:"start_conversation"`
	NotAllowed        string `yaml:"not_allowed"`
	StartButton       string `yaml:"start_button"`
	BackButton        string `yaml:"back_button"`
}

type AdminStrings struct {
	UserIsNotBanned    string `yaml:"user_is_not_banned"`
	UserIsBanned       string `yaml:"user_is_banned"`
	BanUser            string `yaml:"ban_user"`
	GotBanned          string `yaml:"got_banned"`
	UnbanUser          string `yaml:"unban_user"`
	HasUnbanned        string `yaml:"has_unbanned"`
	NoMessage          string `yaml:"no_message"`
	UserNotFound       string `yaml:"user_not_found"`
	CountOfUsers       string `yaml:"count_of_users"`
	HasPrivateForwards string `yaml:"has_private_forwards"`
	BannedListTitle    string `yaml:"banned_list_title"`
	ErrorReport        string `yaml:"error_report"`
}

type CommandText struct {
	Command     string `yaml:"command"`
	Description string `yaml:"description"`
}

type Strings struct {
	DefaultLocale string            `yaml:"default_locale"`
	Locales       map[string]Locale `yaml:"locales"`
	Admin         AdminStrings      `yaml:"admin"`
	Commands      []CommandText     `yaml:"commands"`
}

// LoadStrings читает встроенный набор текстов и, если задан path, накладывает поверх него файл.
// Локали из файла заменяют встроенные целиком.
func LoadStrings(path string) (*Strings, error) {
	var s Strings
	if err := yaml.Unmarshal(defaultStrings, &s); err != nil {
		return nil, fmt.Errorf("decode embedded strings: %w", err)
	}
	if path == "" {
		return &s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	if _, ok := s.Locales[s.DefaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %q is not defined", s.DefaultLocale)
	}
	return &s, nil
}

// Locale выбирает тексты по language code пользователя
func (s *Strings) Locale(lang string) Locale {
	if l, ok := s.Locales[lang]; ok {
		return l
	}
	return s.Locales[s.DefaultLocale]
}
