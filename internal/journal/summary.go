package journal

import "github.com/pbaille/moodjournal/internal/domain"

// FrequencyCount maps each observed emotion to how often it occurs.
// Emotions that never occur are absent rather than zero.
type FrequencyCount map[domain.Emotion]int

// TimelinePoint is one entry projected onto the emotion timeline
type TimelinePoint struct {
	Timestamp string         `json:"time"`
	Emotion   domain.Emotion `json:"emotion"`
}

// SummarizeFrequency counts the emotions present in entries
func SummarizeFrequency(entries []domain.Entry) FrequencyCount {
	counts := make(FrequencyCount)
	for _, e := range entries {
		counts[e.Emotion]++
	}
	return counts
}

// Total returns the sum of all counts
func (f FrequencyCount) Total() int {
	var n int
	for _, c := range f {
		n += c
	}
	return n
}

// Filled returns counts for every label in index order, zero where unobserved
func (f FrequencyCount) Filled() []int {
	out := make([]int, len(domain.Emotions))
	for i, e := range domain.Emotions {
		out[i] = f[e]
	}
	return out
}

// SummarizeTimeline projects entries into (timestamp, emotion) pairs, keeping their order
func SummarizeTimeline(entries []domain.Entry) []TimelinePoint {
	points := make([]TimelinePoint, len(entries))
	for i, e := range entries {
		points[i] = TimelinePoint{Timestamp: e.Timestamp, Emotion: e.Emotion}
	}
	return points
}
