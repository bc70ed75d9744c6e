package telegram

import (
	"strings"
	"testing"
)

func TestSplitMessageRespectsLimit(t *testing.T) {
	var builder strings.Builder
	builder.WriteString(strings.Repeat("a", 3000))
	builder.WriteString("\n\n")
	builder.WriteString(strings.Repeat("b", 2000))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("c", 500))

	parts := SplitMessage(builder.String())
	if len(parts) != 2 {
		t.Fatalf("ожидалось 2 части, получено %d", len(parts))
	}
	for i, part := range parts {
		if length := len([]rune(part)); length > messageLimit {
			t.Fatalf("часть %d длиннее лимита: %d", i, length)
		}
	}
	if parts[0] != strings.Repeat("a", 3000) {
		t.Fatalf("неожиданное содержимое первой части")
	}
	if !strings.HasPrefix(parts[1], "b") || !strings.HasSuffix(parts[1], strings.Repeat("c", 500)) {
		t.Fatalf("вторая часть должна содержать блоки b и c")
	}
}

func TestSplitTextWithoutNewlines(t *testing.T) {
	parts := splitText(strings.Repeat("я", 25), 10)
	if len(parts) != 3 {
		t.Fatalf("ожидалось 3 части, получено %d", len(parts))
	}
	if len([]rune(parts[2])) != 5 {
		t.Fatalf("последняя часть: %q", parts[2])
	}
}

func TestSplitMessageShortAndEmpty(t *testing.T) {
	if parts := SplitMessage(" hello "); len(parts) != 1 || parts[0] != "hello" {
		t.Fatalf("неожиданный результат: %q", parts)
	}
	if parts := SplitMessage("   \n  "); len(parts) != 0 {
		t.Fatalf("для пустого текста ожидалось 0 частей, получено %d", len(parts))
	}
}

func TestFitCaption(t *testing.T) {
	caption := "Payment ID: 1\n" + strings.Repeat("x", captionLimit)
	if got := fitCaption(caption); got != "Payment ID: 1" {
		t.Fatalf("подпись должна обрезаться по строке, получено %q", got)
	}
	if got := fitCaption("  "); got != "" {
		t.Fatalf("пустая подпись: %q", got)
	}
}
