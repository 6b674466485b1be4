package parser

import "strings"

// Normalizer maps raw statement category tags to canonical labels. Tags that
// have no synonym pass through unchanged, which makes normalization
// idempotent: canonical labels are never themselves keys in the table.
type Normalizer struct {
	synonyms map[string]string
}

// NewNormalizer returns a normalizer preloaded with the tag synonyms seen in
// Paytm statements, including the emoji-prefixed variants the app emits.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		synonyms: map[string]string{
			"Bill Payments":   "Bills",
			"✈️ Travel": "Travel",
			"️ Fuel":     "Fuel",
		},
	}
}

// Add registers an extra synonym. Extending the table never requires touching
// extraction logic.
func (n *Normalizer) Add(raw, canonical string) {
	n.synonyms[raw] = canonical
}

// Normalize returns the canonical label for a raw tag.
func (n *Normalizer) Normalize(label string) string {
	label = strings.TrimSpace(label)
	if canonical, ok := n.synonyms[label]; ok {
		return canonical
	}
	return label
}
