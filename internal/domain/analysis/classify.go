package analysis

import "strings"

// Classify maps a free-form risk label onto a RiskClass.
// Order matters: "high" is checked before "medium" before "low".
func Classify(label string) RiskClass {
	if strings.TrimSpace(label) == "" {
		return RiskUnknown
	}
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "high"):
		return RiskHigh
	case strings.Contains(l, "medium"):
		return RiskMedium
	case strings.Contains(l, "low"):
		return RiskLow
	default:
		return RiskUnknown
	}
}

// Tone is the class used for display. Unknown is shown as medium.
func (c RiskClass) Tone() RiskClass {
	switch c {
	case RiskHigh, RiskLow:
		return c
	default:
		return RiskMedium
	}
}
