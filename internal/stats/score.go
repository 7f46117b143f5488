// Package stats contains scoring, history statistics and reporting.
package stats

import (
	"math"
	"strings"
)

// WordCount counts whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// WPM computes words per minute for typed text after elapsedSeconds. Non-positive elapsed time
// yields 0.
func WPM(typed string, elapsedSeconds float64) int {
	if elapsedSeconds <= 0 {
		return 0
	}
	words := WordCount(typed)
	return int(math.Round(float64(words) / (elapsedSeconds / 60)))
}

// Accuracy returns the percentage of correct characters rounded to two decimals. The second
// result is false when nothing was typed and accuracy is undefined.
func Accuracy(correct, total int) (float64, bool) {
	if total <= 0 {
		return 0, false
	}
	return Round2(100 * float64(correct) / float64(total)), true
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
