package fusion

import (
	"regexp"
	"strconv"
	"strings"
)

// confidenceMarker is the phrase model prompts ask for; extraction scans the
// prose following its last occurrence.
const confidenceMarker = "confidence score"

var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// ExtractConfidence pulls the first numeric token following the confidence
// marker phrase in free-form model output. Values above 1 are treated as
// percentages. Returns (0, false) when the marker or a number is absent, so
// the caller can skip the unit rather than count it as zero.
func ExtractConfidence(text string) (float64, bool) {
	lower := strings.ToLower(text)
	idx := strings.LastIndex(lower, confidenceMarker)
	if idx < 0 {
		return 0, false
	}

	tail := lower[idx+len(confidenceMarker):]
	match := numberPattern.FindString(tail)
	if match == "" {
		return 0, false
	}

	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	if score > 1 {
		score /= 100
	}
	return Clamp01(score), true
}
