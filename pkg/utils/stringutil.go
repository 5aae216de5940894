package utils

import (
	"strings"
)

// Coalesce returns the first non-empty string among candidates.
func Coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// StripNewlines removes every line break from s.
func StripNewlines(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

// SplitAndTrim splits by sep and trims each part, dropping empty parts when dropEmpty is true.
func SplitAndTrim(s, sep string, dropEmpty bool) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if dropEmpty && p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// JoinNonEmpty joins non-empty strings using sep after trimming.
func JoinNonEmpty(sep string, parts ...string) string {
	filtered := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			filtered = append(filtered, p)
		}
	}
	return strings.Join(filtered, sep)
}

// TrimOutput trims surrounding whitespace and single quotes from command output.
func TrimOutput(s string) string {
	return strings.Trim(strings.TrimSpace(s), "'")
}

// LastLine returns the last non-empty line of s.
func LastLine(s string) string {
	lines := SplitAndTrim(s, "\n", true)
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
