package classifier

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
)

// sparseVector holds the non-zero features of one document, indices ascending.
type sparseVector struct {
	idx []int
	val []float64
}

// Vectorizer turns text into L2-normalized tf-idf vectors over a fixed vocabulary
type Vectorizer struct {
	vocab map[string]int
	terms []string
	idf   []float64
}

// Tokenize lowercases text and splits it into word tokens of at least two characters
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// fitVectorizer learns the vocabulary and idf weights from docs.
// The vocabulary keeps the maxFeatures terms with the highest document frequency.
func fitVectorizer(docs []string, maxFeatures int) *Vectorizer {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, tok := range Tokenize(doc) {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}

	ranked := make([]string, 0, len(df))
	for term := range df {
		ranked = append(ranked, term)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if df[ranked[i]] != df[ranked[j]] {
			return df[ranked[i]] > df[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if maxFeatures > 0 && len(ranked) > maxFeatures {
		ranked = ranked[:maxFeatures]
	}
	sort.Strings(ranked)

	n := float64(len(docs))
	v := &Vectorizer{
		vocab: make(map[string]int, len(ranked)),
		terms: ranked,
		idf:   make([]float64, len(ranked)),
	}
	for i, term := range ranked {
		v.vocab[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return v
}

// Size returns the vocabulary size
func (v *Vectorizer) Size() int {
	return len(v.terms)
}

// Terms returns the vocabulary in feature index order
func (v *Vectorizer) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

func (v *Vectorizer) transform(text string) sparseVector {
	counts := make(map[int]float64)
	for _, tok := range Tokenize(text) {
		if i, ok := v.vocab[tok]; ok {
			counts[i]++
		}
	}

	vec := sparseVector{
		idx: make([]int, 0, len(counts)),
		val: make([]float64, 0, len(counts)),
	}
	for i := range counts {
		vec.idx = append(vec.idx, i)
	}
	sort.Ints(vec.idx)

	for _, i := range vec.idx {
		vec.val = append(vec.val, counts[i]*v.idf[i])
	}
	if norm := floats.Norm(vec.val, 2); norm > 0 {
		floats.Scale(1/norm, vec.val)
	}
	return vec
}
