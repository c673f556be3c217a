package prompt

import (
	"encoding/json"
	"fmt"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a senior project manager and risk assessment expert. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- risk_level is one of: Low, Medium, High.
- success_probability is a number between 0 and 100.
- risk_categories maps each category (technical, market, resource, budget, operational) to a risk percentage 0-100.
- detailed_analysis is an array with one object per category; keep explanations concise.
- If the description is not a real project, respond with {"error": "<reason>"} instead.

Schema (example with empty values):
{
  "risk_level": "<Low|Medium|High>",
  "success_probability": 0,
  "risk_explanation": "<string>",
  "risk_categories": {"technical": 0, "market": 0, "resource": 0, "budget": 0, "operational": 0},
  "detailed_analysis": [
    {
      "category": "<string>",
      "risk_level": "<Low|Medium|High>",
      "value": 0,
      "explanation": "<string>"
    }
  ]
}`
}

// GetUserPrompt wraps the project description.
func GetUserPrompt(description string) string {
	return fmt.Sprintf(`Analyze the following project for risks and respond with the JSON per schema.

PROJECT DESCRIPTION: %s

Focus on technical implementation, market and business, resource and timeline, budget and financial, and operational risks.`, description)
}

// Item is one detailed_analysis row of the schema.
type Item struct {
	Category    string  `json:"category"`
	RiskLevel   string  `json:"risk_level"`
	Value       float64 `json:"value"`
	Explanation string  `json:"explanation"`
}

// Assessment is the structured response shape requested by the system prompt.
type Assessment struct {
	RiskLevel          string             `json:"risk_level"`
	SuccessProbability float64            `json:"success_probability"`
	RiskExplanation    string             `json:"risk_explanation"`
	RiskCategories     map[string]float64 `json:"risk_categories"`
	DetailedAnalysis   []Item             `json:"detailed_analysis"`
}

// SampleAssessment returns a fixed assessment following the schema, for offline mode.
func SampleAssessment() Assessment {
	return Assessment{
		RiskLevel:          "Medium",
		SuccessProbability: 65,
		RiskExplanation:    "Offline sample: moderate delivery and integration risk. Connect a risk service for a real assessment.",
		RiskCategories: map[string]float64{
			"technical":   55,
			"market":      40,
			"resource":    50,
			"budget":      45,
			"operational": 35,
		},
		DetailedAnalysis: []Item{
			{Category: "Technical", RiskLevel: "Medium", Value: 55, Explanation: "Integration dependencies may slow delivery."},
			{Category: "Budget", RiskLevel: "Medium", Value: 45, Explanation: "Keep contingency for scope changes."},
			{Category: "Operational", RiskLevel: "Low", Value: 35, Explanation: "Standard operational practices apply."},
		},
	}
}

// JSON marshals a into the wire payload.
func (a Assessment) JSON() ([]byte, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal assessment: %w", err)
	}
	return b, nil
}
