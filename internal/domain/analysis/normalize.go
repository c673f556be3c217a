package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Shape is the closed set of response variants the service may return.
type Shape int

const (
	ShapeStructured Shape = iota
	ShapeNarrative
	ShapeServiceError
)

func (s Shape) String() string {
	switch s {
	case ShapeServiceError:
		return "service_error"
	case ShapeNarrative:
		return "narrative"
	default:
		return "structured"
	}
}

// wire field names used by the risk service
const (
	fieldError       = "error"
	fieldResponse    = "response"
	fieldRiskLevel   = "risk_level"
	fieldSuccess     = "success_probability"
	fieldExplanation = "risk_explanation"
	fieldCategories  = "risk_categories"
	fieldDetailed    = "detailed_analysis"
)

var structuredFields = []string{fieldRiskLevel, fieldSuccess, fieldExplanation, fieldCategories, fieldDetailed}

// Outcome of normalizing one payload. Result is only meaningful when Shape
// is not ShapeServiceError; Message only when it is.
type Outcome struct {
	Shape   Shape
	Result  AnalysisResult
	Message string
}

// Err returns the *ServiceError for ShapeServiceError outcomes, nil otherwise.
func (o Outcome) Err() error {
	if o.Shape != ShapeServiceError {
		return nil
	}
	return &ServiceError{Message: o.Message}
}

// Discriminate picks the payload's variant. An error field wins over
// everything, then a narrative-only payload, else structured.
func Discriminate(p Payload) Shape {
	if _, ok := errorMessage(p); ok {
		return ShapeServiceError
	}
	if _, ok := narrative(p); ok {
		return ShapeNarrative
	}
	return ShapeStructured
}

// Normalize maps any payload onto the canonical AnalysisResult. It never fails;
// a service-reported problem comes back as a ShapeServiceError outcome.
func Normalize(p Payload) Outcome {
	switch Discriminate(p) {
	case ShapeServiceError:
		msg, _ := errorMessage(p)
		return Outcome{Shape: ShapeServiceError, Message: msg}
	case ShapeNarrative:
		text, _ := narrative(p)
		return Outcome{Shape: ShapeNarrative, Result: AnalysisResult{
			RiskLevel:       LabelComplete,
			RiskExplanation: NarrativeExplanation,
			DetailedItems:   []DetailedItem{},
			RawNarrative:    &text,
		}}
	default:
		return Outcome{Shape: ShapeStructured, Result: structured(p)}
	}
}

func errorMessage(p Payload) (string, bool) {
	v, ok := p[fieldError]
	if !ok || v == nil {
		return "", false
	}
	switch e := v.(type) {
	case string:
		if strings.TrimSpace(e) == "" {
			return "", false
		}
		return e, true
	case bool:
		if !e {
			return "", false
		}
		return "service reported an error", true
	default:
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Sprint(e), true
		}
		return string(b), true
	}
}

func narrative(p Payload) (string, bool) {
	text, ok := p[fieldResponse].(string)
	if !ok || strings.TrimSpace(text) == "" {
		return "", false
	}
	for _, f := range structuredFields {
		if v, ok := p[f]; ok && v != nil {
			return "", false
		}
	}
	return text, true
}

func structured(p Payload) AnalysisResult {
	res := AnalysisResult{
		RiskLevel:       stringField(p[fieldRiskLevel]),
		RiskExplanation: stringField(p[fieldExplanation]),
	}
	if res.RiskExplanation == "" {
		res.RiskExplanation = FallbackExplanation
	}

	prob, ok := percent(p[fieldSuccess])
	if !ok {
		prob = 0
	}
	res.SuccessProbability = &prob

	if cats, ok := p[fieldCategories].(map[string]any); ok {
		res.RiskCategories = make(map[string]float64, len(cats))
		for name, v := range cats {
			if pct, ok := percent(v); ok {
				res.RiskCategories[name] = pct
			}
		}
	}

	if items, ok := p[fieldDetailed].([]any); ok {
		res.DetailedItems = make([]DetailedItem, 0, len(items))
		for _, it := range items {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			res.DetailedItems = append(res.DetailedItems, detailedItem(m))
		}
	} else {
		res.DetailedItems = []DetailedItem{{
			Category:    "Overall",
			RiskLevel:   res.RiskLevel,
			Explanation: res.RiskExplanation,
		}}
	}
	return res
}

func detailedItem(m map[string]any) DetailedItem {
	item := DetailedItem{
		Category:    stringField(m["category"]),
		RiskLevel:   stringField(m[fieldRiskLevel]),
		Explanation: stringField(m["explanation"]),
	}
	if item.RiskLevel == "" {
		item.RiskLevel = stringField(m["risk"])
	}
	if v, ok := percent(m["value"]); ok {
		item.Value = &v
	}
	return item
}

func stringField(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	default:
		return ""
	}
}

// percent accepts 30, 30.5, "30" or "30%" and clamps to [0,100].
func percent(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(n), "%"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return math.Min(100, math.Max(0, f)), true
}
