package logdemo

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mgomes/pseudoclass/class"
)

var tagPattern = regexp.MustCompile(`<([a-z\-]+)>|</([a-z\-]+)>`)

var colors = map[string]lipgloss.Color{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
	"grey":    "8",
}

func knownTag(tag string) bool {
	switch tag {
	case "b", "i", "u", "blink", "reset":
		return true
	}
	_, ok := colors[strings.TrimPrefix(tag, "bg-")]
	return ok
}

// Colorize renders markup such as "<b>bold</b> <red>red</red>" with r.
// Unknown tags are left in place. Unclosed tags end with the message.
func Colorize(r *lipgloss.Renderer, message string) string {
	var (
		out   strings.Builder
		stack []string
		last  int
	)
	flush := func(text string) {
		out.WriteString(render(r, stack, text))
	}

	for _, m := range tagPattern.FindAllStringSubmatchIndex(message, -1) {
		open, closing := submatch(message, m, 1), submatch(message, m, 2)
		tag := open + closing
		if !knownTag(tag) {
			continue
		}
		flush(message[last:m[0]])
		last = m[1]

		switch {
		case open == "reset":
			stack = stack[:0]
		case open != "":
			stack = append(stack, open)
		case len(stack) > 0 && stack[len(stack)-1] == closing:
			stack = stack[:len(stack)-1]
		}
	}
	flush(message[last:])
	return out.String()
}

func submatch(s string, m []int, group int) string {
	if m[2*group] < 0 {
		return ""
	}
	return s[m[2*group]:m[2*group+1]]
}

// render styles text line by line so lipgloss does not pad short lines.
func render(r *lipgloss.Renderer, stack []string, text string) string {
	if len(stack) == 0 || text == "" {
		return text
	}
	style := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	for _, tag := range stack {
		switch tag {
		case "b":
			style = style.Bold(true)
		case "i":
			style = style.Italic(true)
		case "u":
			style = style.Underline(true)
		case "blink":
			style = style.Blink(true)
		default:
			if c, ok := colors[strings.TrimPrefix(tag, "bg-")]; ok && strings.HasPrefix(tag, "bg-") {
				style = style.Background(c)
			} else if ok {
				style = style.Foreground(c)
			}
		}
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// Colorizer is a mixin providing colorize(message).
func Colorizer(r *lipgloss.Renderer) class.Table {
	return class.Table{
		"colorize": class.NewFunc(func(_ *class.Object, args ...class.Value) (class.Value, error) {
			if len(args) == 0 || args[0].IsNil() {
				return class.NewString(""), nil
			}
			return class.NewString(Colorize(r, args[0].String())), nil
		}),
	}
}
