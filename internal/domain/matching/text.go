package matching

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// minTokenRunes drops single-character noise tokens.
const minTokenRunes = 2

var stopWords = map[string]struct{}{ //nolint:gochecknoglobals // read-only lookup table
	"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "am": {}, "an": {}, "and": {},
	"any": {}, "are": {}, "as": {}, "at": {}, "be": {}, "been": {}, "but": {}, "by": {},
	"can": {}, "do": {}, "for": {}, "from": {}, "get": {}, "had": {}, "has": {}, "have": {},
	"he": {}, "her": {}, "his": {}, "how": {}, "i": {}, "if": {}, "in": {}, "into": {},
	"is": {}, "it": {}, "its": {}, "just": {}, "me": {}, "more": {}, "my": {}, "no": {},
	"not": {}, "of": {}, "on": {}, "or": {}, "our": {}, "out": {}, "over": {}, "she": {},
	"so": {}, "some": {}, "than": {}, "that": {}, "the": {}, "their": {}, "them": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "this": {}, "to": {}, "up": {},
	"us": {}, "very": {}, "want": {}, "was": {}, "we": {}, "were": {}, "what": {},
	"when": {}, "which": {}, "who": {}, "will": {}, "with": {}, "would": {}, "you": {},
	"your": {},
}

// Tokenize lower-cases text, splits it on anything that is not a letter or
// digit and drops stop words and single-rune tokens.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < minTokenRunes {
			continue
		}
		if _, skip := stopWords[f]; skip {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Vectorizer weights the terms of a small document corpus by term count
// times smoothed inverse document frequency.
type Vectorizer struct {
	vectors []map[string]float64
}

// NewVectorizer builds weighted term vectors for docs.
func NewVectorizer(docs ...string) *Vectorizer {
	counts := make([]map[string]float64, len(docs))
	df := make(map[string]int)
	for i, d := range docs {
		tf := make(map[string]float64)
		for _, tok := range Tokenize(d) {
			tf[tok]++
		}
		for term := range tf {
			df[term]++
		}
		counts[i] = tf
	}

	n := float64(len(docs))
	for _, tf := range counts {
		for term, c := range tf {
			idf := 1 + math.Log((1+n)/(1+float64(df[term])))
			tf[term] = c * idf
		}
	}
	return &Vectorizer{vectors: counts}
}

// Len returns the number of documents in the corpus.
func (v *Vectorizer) Len() int { return len(v.vectors) }

// Similarity returns the cosine similarity of documents i and j, or 0 when
// either index is out of range or either vector is empty.
func (v *Vectorizer) Similarity(i, j int) float64 {
	if i < 0 || j < 0 || i >= len(v.vectors) || j >= len(v.vectors) {
		return 0
	}
	return cosine(v.vectors[i], v.vectors[j])
}

// TextRelevance scores how related two free-text fields are, in [0,1].
// Empty input on either side yields 0. The score is symmetric.
func TextRelevance(a, b string) float64 {
	return NewVectorizer(a, b).Similarity(0, 1)
}

func cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, na, nb float64
	for _, term := range sortedTerms(a) {
		w := a[term]
		na += w * w
		dot += w * b[term]
	}
	for _, term := range sortedTerms(b) {
		w := b[term]
		nb += w * w
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(sim) || sim < 0 {
		return 0
	}
	return math.Min(sim, 1)
}

// sortedTerms fixes summation order so results are bit-for-bit repeatable.
func sortedTerms(v map[string]float64) []string {
	terms := make([]string, 0, len(v))
	for t := range v {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}
