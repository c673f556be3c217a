package analysis

// EntryID identifier untuk HistoryEntry (epoch milliseconds at creation)
type EntryID int64

// RiskClass enum
type RiskClass string

const (
	RiskHigh    RiskClass = "high"
	RiskMedium  RiskClass = "medium"
	RiskLow     RiskClass = "low"
	RiskUnknown RiskClass = "unknown"
)

const (
	// LabelComplete is the risk label used when the service gave none.
	LabelComplete = "Analysis Complete"

	FallbackExplanation  = "Analysis completed successfully."
	NarrativeExplanation = "See detailed analysis below for AI assessment."
)

// DetailedItem value object, one row of the detailed breakdown
type DetailedItem struct {
	Category    string   `json:"category"`
	RiskLevel   string   `json:"risk_level"`
	Value       *float64 `json:"value"`
	Explanation string   `json:"explanation"`
}

// AnalysisResult is the canonical result every renderer consumes,
// whatever shape the service answered with.
type AnalysisResult struct {
	RiskLevel          string             `json:"risk_level"`
	SuccessProbability *float64           `json:"success_probability"`
	RiskExplanation    string             `json:"risk_explanation"`
	RiskCategories     map[string]float64 `json:"risk_categories"`
	DetailedItems      []DetailedItem     `json:"detailed_items"`
	RawNarrative       *string            `json:"raw_narrative"`
}

// IsNarrative reports whether the service answered with free-form text.
func (r AnalysisResult) IsNarrative() bool {
	return r.RawNarrative != nil
}

// Class classifies the result's risk label.
func (r AnalysisResult) Class() RiskClass {
	return Classify(r.RiskLevel)
}

// HistoryEntry is one persisted analysis. Entries are never mutated after creation.
type HistoryEntry struct {
	ID        EntryID        `json:"id"`
	Summary   string         `json:"summary"`
	FullInput string         `json:"full_input"`
	RiskLevel string         `json:"risk_level"`
	RiskClass RiskClass      `json:"risk_class"`
	CreatedAt string         `json:"created_at"`
	Result    AnalysisResult `json:"result"`
}
