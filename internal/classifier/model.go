package classifier

import (
	"math"
	"math/rand/v2"

	"github.com/pbaille/moodjournal/internal/domain"
)

// Options holds the training hyperparameters
type Options struct {
	Seed        uint64
	TestSize    float64
	MaxFeatures int
	MaxIter     int
	C           float64
}

// DefaultOptions mirrors the reference training setup: 80/20 split with seed 42,
// 5000 tf-idf features and at most 200 optimizer iterations.
func DefaultOptions() Options {
	return Options{
		Seed:        42,
		TestSize:    0.2,
		MaxFeatures: 5000,
		MaxIter:     200,
		C:           1.0,
	}
}

// Model is a trained, immutable text-to-emotion classifier.
// It is safe for concurrent use.
type Model struct {
	vectorizer *Vectorizer
	regression *softmaxRegression
	heldOut    []domain.Sample
	iterations int
}

// Train splits the corpus, fits the tf-idf vectorizer and the softmax regression
// on the training part, and returns the resulting Model. Training is deterministic
// for a given corpus and Options.
func Train(corpus domain.Corpus, opts Options) *Model {
	train, heldOut := Split(corpus.Samples, opts.TestSize, opts.Seed)

	docs := make([]string, len(train))
	for i, s := range train {
		docs[i] = s.Text
	}
	vec := fitVectorizer(docs, opts.MaxFeatures)

	x := make([]sparseVector, 0, len(train))
	y := make([]int, 0, len(train))
	for _, s := range train {
		if _, ok := domain.EmotionFromIndex(s.Label); !ok {
			continue
		}
		x = append(x, vec.transform(s.Text))
		y = append(y, s.Label)
	}

	c := opts.C
	if c <= 0 {
		c = 1.0
	}
	reg, iters := fitSoftmax(x, y, fitParams{
		classes:  len(domain.Emotions),
		features: vec.Size(),
		maxIter:  opts.MaxIter,
		c:        c,
	})

	return &Model{
		vectorizer: vec,
		regression: reg,
		heldOut:    heldOut,
		iterations: iters,
	}
}

// Split shuffles samples with a seeded source and returns the train and held-out parts.
// The input slice is not modified.
func Split(samples []domain.Sample, testSize float64, seed uint64) (train, heldOut []domain.Sample) {
	shuffled := make([]domain.Sample, len(samples))
	copy(shuffled, samples)

	rng := rand.New(rand.NewPCG(seed, seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	nTest := 0
	if testSize > 0 {
		nTest = int(math.Ceil(float64(len(shuffled))*testSize - 1e-9))
	}
	if nTest > len(shuffled) {
		nTest = len(shuffled)
	}
	return shuffled[nTest:], shuffled[:nTest]
}

// Classify returns the most probable emotion for text
func (m *Model) Classify(text string) domain.Emotion {
	return domain.Emotions[m.regression.predict(m.vectorizer.transform(text))]
}

// Probabilities returns the class distribution for text
func (m *Model) Probabilities(text string) map[domain.Emotion]float64 {
	probs := make([]float64, len(domain.Emotions))
	m.regression.probabilities(m.vectorizer.transform(text), probs)

	out := make(map[domain.Emotion]float64, len(probs))
	for k, p := range probs {
		out[domain.Emotions[k]] = p
	}
	return out
}

// HeldOut returns the samples excluded from training
func (m *Model) HeldOut() []domain.Sample {
	out := make([]domain.Sample, len(m.heldOut))
	copy(out, m.heldOut)
	return out
}

// Vocabulary returns the number of tf-idf features the model uses
func (m *Model) Vocabulary() int {
	return m.vectorizer.Size()
}

// Iterations reports how many optimizer steps training ran
func (m *Model) Iterations() int {
	return m.iterations
}

// Evaluate returns the fraction of samples whose label the model predicts.
// Samples with unknown label codes are skipped.
func (m *Model) Evaluate(samples []domain.Sample) float64 {
	var total, correct int
	for _, s := range samples {
		want, ok := domain.EmotionFromIndex(s.Label)
		if !ok {
			continue
		}
		total++
		if m.Classify(s.Text) == want {
			correct++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}
