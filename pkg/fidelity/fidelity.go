// Package fidelity measures how much a correction pass changed the
// text it was given. The metrics are advisory signals of an
// over-aggressive correction, not proofs of one.
package fidelity

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

type Metrics struct {
	WordCountRatio    float64 `json:"wordCountRatio"`
	EditDistanceRatio float64 `json:"editDistanceRatio"`
}

type Thresholds struct {
	WordCount    float64
	EditDistance float64

	// Gate escalates a threshold breach from a warning to a document
	// failure. Off by default.
	Gate bool
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		WordCount:    0.10,
		EditDistance: 0.15,
	}
}

// Validate compares raw against corrected text.
//
// The word-count ratio is the absolute word-count delta relative to the
// raw word count. The edit-distance ratio is the Levenshtein distance
// relative to the raw rune length. Both are 0 when the texts are equal.
func Validate(raw, corrected string) Metrics {
	rawWords := wordCount(raw)
	correctedWords := wordCount(corrected)

	delta := rawWords - correctedWords

	if delta < 0 {
		delta = -delta
	}

	distance := levenshtein.ComputeDistance(raw, corrected)

	return Metrics{
		WordCountRatio:    float64(delta) / float64(max(rawWords, 1)),
		EditDistanceRatio: float64(distance) / float64(max(len([]rune(raw)), 1)),
	}
}

// Exceeds reports which thresholds the metrics break. An empty result
// means the correction is within tolerance.
func (m Metrics) Exceeds(t Thresholds) []string {
	var breaches []string

	if m.WordCountRatio > t.WordCount {
		breaches = append(breaches, "word-count ratio")
	}

	if m.EditDistanceRatio > t.EditDistance {
		breaches = append(breaches, "edit-distance ratio")
	}

	return breaches
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
