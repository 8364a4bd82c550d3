package useCases

import (
	"regexp"
	"strings"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
)

// [label](buttonurl:URL) или [label](buttonurl:URL:same); до двух слэшей после "buttonurl:" отбрасываются
var buttonURLRegex = regexp.MustCompile(`\[([^\[]+?)\]\(buttonurl:(?:/{0,2})(.+?)(:same)?\)`)

// ParseButtons вырезает из текста кнопки и возвращает оставшийся текст и ряды кнопок.
// Кнопка, перед которой стоит нечётное число обратных слэшей, экранирована:
// она остаётся в тексте без одного слэша. nil даёт пустой результат.
func ParseButtons(text *string) domain.ParsedMarkup {
	var out domain.ParsedMarkup
	if text == nil {
		return out
	}
	src := *text

	var b strings.Builder
	prev := 0
	for _, m := range buttonURLRegex.FindAllStringSubmatchIndex(src, -1) {
		start, end := m[0], m[1]

		escapes := 0
		for i := start - 1; i >= 0 && src[i] == '\\'; i-- {
			escapes++
		}

		if escapes%2 == 1 {
			// съедаем последний слэш, сама кнопка уйдёт в текст со следующим куском
			b.WriteString(src[prev : start-1])
			prev = start
			continue
		}

		btn := domain.Button{
			Text: src[m[2]:m[3]],
			URL:  src[m[4]:m[5]],
		}
		same := m[6] >= 0
		if same && len(out.Rows) > 0 {
			last := len(out.Rows) - 1
			out.Rows[last] = append(out.Rows[last], btn)
		} else {
			out.Rows = append(out.Rows, domain.ButtonRow{btn})
		}

		b.WriteString(src[prev:start])
		prev = end
	}
	b.WriteString(src[prev:])

	out.Text = b.String()
	return out
}

// RenderButtons собирает разметку обратно в текст с токенами кнопок.
// ParseButtons(RenderButtons(p)) даёт те же ряды кнопок.
func RenderButtons(p domain.ParsedMarkup) string {
	var b strings.Builder
	// в тексте остаются только экранированные кнопки, перед каждой чётное число слэшей
	b.WriteString(buttonURLRegex.ReplaceAllStringFunc(p.Text, func(tok string) string {
		return `\` + tok
	}))
	for _, row := range p.Rows {
		if len(row) == 0 {
			continue
		}
		b.WriteString("\n")
		for i, btn := range row {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString("[")
			b.WriteString(btn.Text)
			b.WriteString("](buttonurl:")
			if strings.HasPrefix(btn.URL, "/") {
				// парсер срезает до двух ведущих слэшей
				b.WriteString("//")
			}
			b.WriteString(btn.URL)
			if i > 0 {
				b.WriteString(":same")
			}
			b.WriteString(")")
		}
	}
	return b.String()
}
