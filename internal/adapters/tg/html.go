package tg

import (
	"html"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/zelenin/go-tdlib/client"
)

// renderHTML восстанавливает HTML-разметку текста по сущностям TDLib.
// Смещения сущностей заданы в UTF-16 единицах. Сущности без HTML-аналога (хэштеги, упоминания и т.п.)
// выводятся просто текстом.
func renderHTML(text string, entities []*client.TextEntity) string {
	type span struct {
		start, end int
		open       string
		close      string
	}

	var spans []span
	for _, e := range entities {
		if e == nil || e.Length <= 0 {
			continue
		}
		open, closeTag, ok := entityTags(e.Type)
		if !ok {
			continue
		}
		spans = append(spans, span{
			start: int(e.Offset),
			end:   int(e.Offset + e.Length),
			open:  open,
			close: closeTag,
		})
	}
	if len(spans) == 0 {
		return html.EscapeString(text)
	}

	// внешние сущности раньше вложенных
	slices.SortStableFunc(spans, func(a, b span) int {
		if a.start != b.start {
			return a.start - b.start
		}
		return b.end - a.end
	})

	var (
		sb    strings.Builder
		stack []span
		next  int
		pos   int
	)
	emit := func(at int) {
		for len(stack) > 0 && stack[len(stack)-1].end <= at {
			sb.WriteString(stack[len(stack)-1].close)
			stack = stack[:len(stack)-1]
		}
		for next < len(spans) && spans[next].start <= at {
			sb.WriteString(spans[next].open)
			stack = append(stack, spans[next])
			next++
		}
	}

	for _, r := range text {
		emit(pos)
		sb.WriteString(html.EscapeString(string(r)))
		pos += utf16.RuneLen(r)
	}
	emit(pos)
	for i := len(stack) - 1; i >= 0; i-- {
		sb.WriteString(stack[i].close)
	}
	return sb.String()
}

func entityTags(t client.TextEntityType) (string, string, bool) {
	switch e := t.(type) {
	case *client.TextEntityTypeBold:
		return "<b>", "</b>", true
	case *client.TextEntityTypeItalic:
		return "<i>", "</i>", true
	case *client.TextEntityTypeUnderline:
		return "<u>", "</u>", true
	case *client.TextEntityTypeStrikethrough:
		return "<s>", "</s>", true
	case *client.TextEntityTypeSpoiler:
		return "<tg-spoiler>", "</tg-spoiler>", true
	case *client.TextEntityTypeCode:
		return "<code>", "</code>", true
	case *client.TextEntityTypePre:
		return "<pre>", "</pre>", true
	case *client.TextEntityTypePreCode:
		return `<pre><code class="language-` + html.EscapeString(e.Language) + `">`, "</code></pre>", true
	case *client.TextEntityTypeTextUrl:
		return `<a href="` + html.EscapeString(e.Url) + `">`, "</a>", true
	case *client.TextEntityTypeMentionName:
		return `<a href="tg://user?id=` + strconv.FormatInt(e.UserId, 10) + `">`, "</a>", true
	}
	return "", "", false
}
