package domain

import "errors"

// Emotion is one of the six labels the classifier can produce
type Emotion string

const (
	Sadness  Emotion = "sadness"
	Joy      Emotion = "joy"
	Love     Emotion = "love"
	Anger    Emotion = "anger"
	Fear     Emotion = "fear"
	Surprise Emotion = "surprise"
)

// Emotions lists the labels in corpus index order.
var Emotions = []Emotion{Sadness, Joy, Love, Anger, Fear, Surprise}

// EmotionFromIndex maps a corpus label code to its Emotion
func EmotionFromIndex(i int) (Emotion, bool) {
	if i < 0 || i >= len(Emotions) {
		return "", false
	}
	return Emotions[i], true
}

// Index returns the corpus label code, or -1 for unknown labels
func (e Emotion) Index() int {
	for i, l := range Emotions {
		if l == e {
			return i
		}
	}
	return -1
}

// Valid reports whether e belongs to the fixed label set
func (e Emotion) Valid() bool {
	return e.Index() >= 0
}

// Sample is one labeled text from the training corpus
type Sample struct {
	Text  string `json:"text"`
	Label int    `json:"label"`
}

// Corpus is the labeled dataset used to fit the classifier
type Corpus struct {
	Name    string   `json:"name"`
	Split   string   `json:"split"`
	Samples []Sample `json:"samples"`
}

// Entry is one submitted journal record
type Entry struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Emotion   Emotion `json:"emotion"`
	Timestamp string  `json:"time"`
}

// TimestampLayout is the second-precision wall clock format stamped on entries.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	// ErrDataUnavailable means the corpus could not be fetched or parsed.
	ErrDataUnavailable = errors.New("corpus data unavailable")
	// ErrEmptyInput rejects blank journal entries.
	ErrEmptyInput = errors.New("entry text is empty")
	// ErrNoSuggestion means the suggestion bank has no message for a label.
	ErrNoSuggestion = errors.New("no suggestion available")
)
