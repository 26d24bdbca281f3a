package extractor

import "strings"

// Lines is the ordered sequence of trimmed, non-empty visible text lines of
// a results page, in document order.
type Lines []string

// Normalize splits raw page text on newlines, trims every piece and drops the
// empty ones. Relative order is preserved; empty input yields no lines.
func Normalize(raw string) Lines {
	if raw == "" {
		return Lines{}
	}
	parts := strings.Split(raw, "\n")
	lines := make(Lines, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			lines = append(lines, p)
		}
	}
	return lines
}

// valueAfter returns the line right after the first line equal to label,
// ignoring case. ok is false when no line matches or the match is last.
func (l Lines) valueAfter(label string) (string, bool) {
	for i, line := range l {
		if strings.EqualFold(line, label) {
			if i+1 < len(l) {
				return l[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// window returns up to size lines starting at i (inclusive).
func (l Lines) window(i, size int) Lines {
	end := i + size
	if end > len(l) {
		end = len(l)
	}
	return l[i:end]
}

// index returns the position of the first line exactly equal to s, or -1.
func (l Lines) index(s string) int {
	for i, line := range l {
		if line == s {
			return i
		}
	}
	return -1
}
