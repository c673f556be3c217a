package analysis

import "strings"

const (
	summaryLimit    = 50
	summaryMinBreak = 30
	ellipsis        = "..."
)

// GenerateSummary shortens project text for list views.
// Text of at most 50 characters is returned verbatim. Longer text is cut at the
// last space, period or comma inside the first 50 characters when that break
// sits past index 30, otherwise at 50, and gets "..." appended.
func GenerateSummary(text string) string {
	runes := []rune(text)
	if len(runes) <= summaryLimit {
		return text
	}

	candidate := string(runes[:summaryLimit])
	breakPoint := max(
		lastRuneIndex(candidate, " "),
		lastRuneIndex(candidate, "."),
		lastRuneIndex(candidate, ","),
	)
	if breakPoint > summaryMinBreak {
		candidate = string(runes[:breakPoint])
	}
	return candidate + ellipsis
}

// lastRuneIndex is strings.LastIndex counted in runes, -1 when absent
func lastRuneIndex(s, sep string) int {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return -1
	}
	return len([]rune(s[:i]))
}
