// Package presentation turns canonical analysis results into what a UI shows.
package presentation

import (
	"fmt"
	"sort"
	"strconv"
	"unicode"
	"unicode/utf8"

	domain "github.com/bryanwahyu/riskscope/internal/domain/analysis"
)

// defaultSuccess feeds the success chart when the service gave no probability.
const defaultSuccess = 50

// ChartPoint is one bar of the risk category chart.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ItemView is one rendered row of the detailed breakdown.
type ItemView struct {
	Category    string `json:"category"`
	Badge       string `json:"badge"`
	ToneClass   string `json:"tone_class"`
	Explanation string `json:"explanation"`
}

// View is the display model for one AnalysisResult.
type View struct {
	RiskLabel   string       `json:"risk_label"`
	ToneClass   string       `json:"tone_class"`
	ScoreText   string       `json:"score_text"`
	Explanation string       `json:"explanation"`
	Categories  []ChartPoint `json:"categories"`
	Success     [2]float64   `json:"success"`
	Items       []ItemView   `json:"items"`
	Narrative   bool         `json:"narrative"`
}

// ToneClass returns the CSS-style class for a risk label.
func ToneClass(label string) string {
	return "risk-" + string(domain.Classify(label).Tone())
}

// Build derives the view. Narrative results get placeholder charts and one
// "AI Analysis" item carrying the text.
func Build(res domain.AnalysisResult) View {
	v := View{
		RiskLabel:   res.RiskLevel,
		ToneClass:   ToneClass(res.RiskLevel),
		Explanation: res.RiskExplanation,
		Narrative:   res.IsNarrative(),
	}
	if v.RiskLabel == "" {
		v.RiskLabel = domain.LabelComplete
	}

	if res.IsNarrative() {
		v.ToneClass = "risk-medium"
		v.ScoreText = "N/A"
		v.Success = [2]float64{defaultSuccess, 100 - defaultSuccess}
		v.Items = []ItemView{{Category: "AI Analysis", ToneClass: "risk-medium", Explanation: *res.RawNarrative}}
		return v
	}

	success := float64(defaultSuccess)
	v.ScoreText = "0%"
	if res.SuccessProbability != nil {
		v.ScoreText = formatPercent(*res.SuccessProbability)
		if *res.SuccessProbability > 0 {
			success = *res.SuccessProbability
		}
	}
	v.Success = [2]float64{success, 100 - success}

	names := make([]string, 0, len(res.RiskCategories))
	for name := range res.RiskCategories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v.Categories = append(v.Categories, ChartPoint{Label: capitalize(name), Value: res.RiskCategories[name]})
	}

	for _, it := range res.DetailedItems {
		v.Items = append(v.Items, itemView(it))
	}
	return v
}

func itemView(it domain.DetailedItem) ItemView {
	level := it.RiskLevel
	if level == "" {
		level = "Unknown"
	}
	value := "N/A"
	if it.Value != nil {
		value = formatPercent(*it.Value)
	}
	explanation := it.Explanation
	if explanation == "" {
		explanation = "No detailed explanation available."
	}
	return ItemView{
		Category:    it.Category,
		Badge:       fmt.Sprintf("%s Risk (%s)", level, value),
		ToneClass:   ToneClass(it.RiskLevel),
		Explanation: explanation,
	}
}

func formatPercent(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64) + "%"
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
