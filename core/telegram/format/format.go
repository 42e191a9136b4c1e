package format

import "regexp"

var mdV1Specials = regexp.MustCompile("([_*`\\[])")

// EscapeMarkdown escapes special characters for Telegram Markdown (v1).
func EscapeMarkdown(text string) string {
	return mdV1Specials.ReplaceAllString(text, `\$1`)
}

// DerefString safely dereferences a *string and returns a default value if nil.
func DerefString(s *string, defaultVal string) string {
	if s != nil {
		return *s
	}
	return defaultVal
}
