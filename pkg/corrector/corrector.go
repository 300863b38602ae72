package corrector

import (
	"context"
	"errors"
)

// Provider abstracts the language-model correction service. Correct
// returns the corrected text together with the entities extracted from
// it; an empty entity set is a valid result for text that contains
// none.
type Provider interface {
	Correct(ctx context.Context, text string) (*Result, error)
}

var (
	// ErrMalformed marks a response that failed shape validation.
	// Treated as transient up to the retry budget, then as a hard
	// failure.
	ErrMalformed = errors.New("malformed correction response")
)

type Result struct {
	Text string

	Entities map[string][]string
}

const (
	CorrectionSystemPrompt = "You are a helpful assistant that only corrects spelling, OCR mistakes, and punctuation errors in text. " +
		"Do not add or infer any additional content. Keep the original meaning intact. " +
		"If the text already seems correct, leave it as is, and if you are unsure, leave it as is."

	EntitySystemPrompt = "You are an assistant that extracts structured data from OCR-scanned historical letters. " +
		"Return your answer as a valid JSON object, with the following keys: " +
		"`People`, `Productions`, `Companies`, `Theaters`, and `Dates`. " +
		"Each value should be a list of strings. If no items are found for a category, return an empty list. " +
		"Do not include any explanation or formatting — only the JSON object."
)
