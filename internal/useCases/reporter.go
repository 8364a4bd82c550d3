package useCases

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
	"github.com/larriantoniy/tg_relay_bot/internal/ports"
)

const maxMessageLength = 4096

// ErrorReporter логирует ошибку обработки и, если задан чат для отчётов, отправляет туда
// дамп события и стек. Длинный отчёт уходит текстовым файлом.
type ErrorReporter struct {
	log     *slog.Logger
	tg      ports.TelegramClient
	chatID  int64
	caption string
	tmpDir  string
}

func NewErrorReporter(log *slog.Logger, tg ports.TelegramClient, chatID int64, caption string) *ErrorReporter {
	return &ErrorReporter{
		log:     log,
		tg:      tg,
		chatID:  chatID,
		caption: caption,
		tmpDir:  os.TempDir(),
	}
}

func (e *ErrorReporter) Report(ctx context.Context, upd domain.Update, err error, stack []byte) {
	e.log.Error("Exception while handling an update",
		"update_id", upd.ID,
		"user_id", upd.SenderID(),
		"error", err,
		"stack", string(stack),
	)
	if e.chatID == 0 || e.tg == nil {
		return
	}

	dump := dumpUpdate(upd)
	trace := err.Error()
	if len(stack) > 0 {
		trace += "\n\n" + string(stack)
	}

	text := fmt.Sprintf(
		"An exception was raised while handling an update\n<pre>update = %s</pre>\n\n<pre>%s</pre>",
		html.EscapeString(dump),
		html.EscapeString(trace),
	)

	if utf8.RuneCountInString(text) <= maxMessageLength {
		if _, sErr := e.tg.Send(ctx, domain.OutboundMessage{ChatID: e.chatID, Text: text}); sErr != nil {
			e.log.Warn("send error report failed", "error", sErr)
		}
		return
	}

	if fErr := e.sendAsFile(ctx, "update = "+dump+"\n\n"+trace); fErr != nil {
		e.log.Warn("send error report file failed", "error", fErr)
	}
}

func dumpUpdate(upd domain.Update) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(upd); err != nil {
		return fmt.Sprintf("%+v", upd)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (e *ErrorReporter) sendAsFile(ctx context.Context, body string) error {
	name := strings.ToUpper(strings.Split(uuid.NewString(), "-")[0]) + ".txt"
	path := filepath.Join(e.tmpDir, name)

	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	defer os.Remove(path)

	return e.tg.SendFile(ctx, e.chatID, path, e.caption)
}
