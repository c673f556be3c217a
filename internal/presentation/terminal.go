package presentation

import (
	"fmt"
	"io"
	"strings"
	"sync"

	domain "github.com/bryanwahyu/riskscope/internal/domain/analysis"
)

// Terminal renders results as plain text.
type Terminal struct {
	W io.Writer

	mu sync.Mutex // serializes writes to W
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{W: w}
}

// Render implements domain.Renderer.
func (t *Terminal) Render(res domain.AnalysisResult) {
	v := Build(res)

	var b strings.Builder
	fmt.Fprintf(&b, "Risk level:   %s [%s]\n", v.RiskLabel, strings.TrimPrefix(v.ToneClass, "risk-"))
	fmt.Fprintf(&b, "Success:      %s\n", v.ScoreText)
	fmt.Fprintf(&b, "Explanation:  %s\n", v.Explanation)
	if len(v.Categories) > 0 {
		b.WriteString("\nRisk categories:\n")
		for _, c := range v.Categories {
			fmt.Fprintf(&b, "  %-14s %5.1f%% %s\n", c.Label, c.Value, bar(c.Value))
		}
	}
	if len(v.Items) > 0 {
		b.WriteString("\nDetailed analysis:\n")
		for _, it := range v.Items {
			if it.Badge != "" {
				fmt.Fprintf(&b, "- %s: %s\n", it.Category, it.Badge)
			} else {
				fmt.Fprintf(&b, "- %s\n", it.Category)
			}
			fmt.Fprintf(&b, "  %s\n", it.Explanation)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	io.WriteString(t.W, b.String())
}

func bar(pct float64) string {
	n := int(pct / 5)
	return strings.Repeat("#", n)
}
