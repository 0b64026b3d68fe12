package caption

import (
	"math"
	"strings"
)

const (
	// DefaultWordsPerMinute is a comfortable narration pace.
	DefaultWordsPerMinute = 165
	// MinSeconds and MaxSeconds bound every clip to short-form platform limits.
	MinSeconds = 8
	MaxSeconds = 60
)

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// EstimateSeconds returns the clip length for text read at wpm words per
// minute, clamped to [MinSeconds, MaxSeconds]. A non-positive wpm uses
// DefaultWordsPerMinute.
func EstimateSeconds(text string, wpm int) int {
	return SecondsForWords(WordCount(text), wpm)
}

// SecondsForWords is EstimateSeconds for an already known word count.
func SecondsForWords(words, wpm int) int {
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	if words < 0 {
		words = 0
	}
	seconds := int(math.Ceil(float64(words) / float64(wpm) * 60))
	return clamp(seconds, MinSeconds, MaxSeconds)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
