package useCases

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
)

const mentionNameLimit = 25

func (r *Relay) Ban(ctx context.Context, log *slog.Logger, msg *domain.Message) error {
	return r.toggleBan(ctx, log, msg, true)
}

func (r *Relay) Unban(ctx context.Context, log *slog.Logger, msg *domain.Message) error {
	return r.toggleBan(ctx, log, msg, false)
}

// toggleBan банит/разбанивает автора сообщения, на которое ответил админ
func (r *Relay) toggleBan(ctx context.Context, log *slog.Logger, msg *domain.Message, ban bool) error {
	userID, err := ResolveIdentity(msg)
	if err != nil {
		return r.identityFailure(ctx, log, msg, err)
	}
	log = log.With("target_id", userID, "ban", ban)

	profile, err := r.tg.FetchProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return r.notify(ctx, log, domain.OutboundMessage{ChatID: msg.ChatID, Text: r.texts.Admin.UserNotFound})
		}
		return fmt.Errorf("fetch profile: %w", err)
	}
	name := html.EscapeString(profile.FirstName)

	err = r.setBanned(ctx, userID, ban)
	switch {
	case errors.Is(err, domain.ErrAlreadyBanned):
		return r.notify(ctx, log, domain.OutboundMessage{ChatID: msg.ChatID, Text: fmt.Sprintf(r.texts.Admin.UserIsBanned, name)})
	case errors.Is(err, domain.ErrNotBanned):
		return r.notify(ctx, log, domain.OutboundMessage{ChatID: msg.ChatID, Text: fmt.Sprintf(r.texts.Admin.UserIsNotBanned, name)})
	case err != nil:
		return err
	}

	adminText, userText := r.texts.Admin.BanUser, r.texts.Admin.GotBanned
	if !ban {
		adminText, userText = r.texts.Admin.UnbanUser, r.texts.Admin.HasUnbanned
	}
	log.Info("ban status changed")

	if err := r.notify(ctx, log, domain.OutboundMessage{ChatID: msg.ChatID, Text: adminText}); err != nil {
		return err
	}
	return r.notify(ctx, log, domain.OutboundMessage{ChatID: userID, Text: userText})
}

// setBanned меняет флаг бана; повторный бан или разбан не забаненного возвращают ошибку без изменений
func (r *Relay) setBanned(ctx context.Context, userID int64, ban bool) error {
	banned, err := r.users.IsBanned(ctx, userID)
	if err != nil {
		return fmt.Errorf("check ban: %w", err)
	}
	if banned == ban {
		if ban {
			return domain.ErrAlreadyBanned
		}
		return domain.ErrNotBanned
	}
	if err := r.users.SetBanned(ctx, userID, ban); err != nil {
		return fmt.Errorf("set ban: %w", err)
	}
	return nil
}

// ListBanned отправляет админу список забаненных
func (r *Relay) ListBanned(ctx context.Context, log *slog.Logger, msg *domain.Message) error {
	ids, err := r.users.ListBanned(ctx)
	if err != nil {
		return fmt.Errorf("list banned: %w", err)
	}

	entries := make([]string, 0, len(ids))
	for _, id := range ids {
		profile, err := r.tg.FetchProfile(ctx, id)
		if err != nil {
			log.Warn("FetchProfile for banned user failed", "banned_id", id, "error", err)
			profile = &domain.Profile{ID: id, FirstName: fmt.Sprint(id)}
		}
		entries = append(entries, fmt.Sprintf("%s [<code>%d</code>]", mention(profile), id))
	}

	return r.notify(ctx, log, domain.OutboundMessage{
		ChatID: msg.ChatID,
		Text:   renderBannedList(r.texts.Admin.BannedListTitle, entries),
	})
}

func (r *Relay) Stats(ctx context.Context, log *slog.Logger, msg *domain.Message) error {
	count, err := r.users.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	return r.notify(ctx, log, domain.OutboundMessage{
		ChatID: msg.ChatID,
		Text:   fmt.Sprintf(r.texts.Admin.CountOfUsers, count),
	})
}

func renderBannedList(title string, entries []string) string {
	if len(entries) == 0 {
		return title
	}

	var b strings.Builder
	b.WriteString(title)
	for i, e := range entries {
		branch := "├"
		if i == len(entries)-1 {
			branch = "└"
		}
		fmt.Fprintf(&b, "\n <b>%s</b> %s", branch, e)
	}
	return b.String()
}

func mention(p *domain.Profile) string {
	if p.Username != "" {
		return "@" + p.Username
	}
	name := []rune(p.FirstName)
	if len(name) > mentionNameLimit {
		name = name[:mentionNameLimit]
	}
	return fmt.Sprintf("<a href='tg://user?id=%d'>%s</a>", p.ID, html.EscapeString(string(name)))
}
