package tg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zelenin/go-tdlib/client"

	"github.com/larriantoniy/tg_relay_bot/internal/config"
)

const (
	systemLanguage = "en"
	deviceModel    = "Server"
	appVersion     = "1.0"
)

// tdlibParams готовит каталоги сессии бота и параметры TDLib.
// Сообщения в локальной базе не храним: боту нужна только база файлов и чатов.
func tdlibParams(cfg *config.AppConfig) (*client.SetTdlibParametersRequest, error) {
	dbDir := filepath.Join(cfg.BaseDir, "database")
	filesDir := filepath.Join(cfg.BaseDir, "files")

	for _, dir := range []string{dbDir, filesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	return &client.SetTdlibParametersRequest{
		UseTestDc:           false,
		DatabaseDirectory:   dbDir,
		FilesDirectory:      filesDir,
		UseFileDatabase:     true,
		UseChatInfoDatabase: true,
		UseMessageDatabase:  false,
		UseSecretChats:      false,
		ApiId:               cfg.ApiID,
		ApiHash:             cfg.ApiHash,
		SystemLanguageCode:  systemLanguage,
		DeviceModel:         deviceModel,
		SystemVersion:       "",
		ApplicationVersion:  appVersion,
	}, nil
}
