package telegram

import "strings"

const (
	messageLimit = 4096
	captionLimit = 1024
)

// SplitMessage делит текст на части по лимиту сообщения Telegram.
func SplitMessage(text string) []string {
	return splitText(text, messageLimit)
}

// fitCaption обрезает подпись к файлу по лимиту, по возможности на границе строки.
func fitCaption(caption string) string {
	parts := splitText(caption, captionLimit)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// splitText режет текст на части не длиннее limit рун, предпочитая переводы строк,
// чтобы HTML-разметка внутри строки не разрывалась.
func splitText(text string, limit int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	runes := []rune(trimmed)
	if len(runes) <= limit {
		return []string{trimmed}
	}

	var parts []string
	for start := 0; start < len(runes); {
		end := start + limit
		if end >= len(runes) {
			if chunk := strings.Trim(string(runes[start:]), "\n"); chunk != "" {
				parts = append(parts, chunk)
			}
			break
		}

		cut := end
		for i := end; i > start; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		if chunk := strings.Trim(string(runes[start:cut]), "\n"); chunk != "" {
			parts = append(parts, chunk)
		}
		start = cut
		for start < len(runes) && runes[start] == '\n' {
			start++
		}
	}
	return parts
}
