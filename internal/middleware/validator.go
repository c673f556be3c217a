package middleware

import (
	"fmt"
	"strconv"

	domain "github.com/bryanwahyu/riskscope/internal/domain/analysis"
)

// maxInputBytes bounds a project description accepted over HTTP.
const maxInputBytes = 16 << 10

// ValidateInputSize rejects descriptions too large to forward.
func ValidateInputSize(input string) error {
	if len(input) > maxInputBytes {
		return fmt.Errorf("project description too large (max %d bytes)", maxInputBytes)
	}
	return nil
}

// ValidateEntryID parses a history entry id from a path parameter.
func ValidateEntryID(raw string) (domain.EntryID, error) {
	if raw == "" {
		return 0, fmt.Errorf("entry ID cannot be empty")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry ID format")
	}
	return domain.EntryID(id), nil
}

// ValidateLimit clamps a list limit to [1, upper]; zero or negative means upper.
func ValidateLimit(limit, upper int) int {
	if limit <= 0 || limit > upper {
		return upper
	}
	return limit
}
