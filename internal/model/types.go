// Package model defines shared data structures.
package model

import "time"

// Durations lists the selectable test lengths in seconds.
var Durations = []int{30, 60, 120, 300}

// DefaultDuration is the test length used when nothing else is configured.
const DefaultDuration = 60

// ValidDuration reports whether d is one of the selectable durations.
func ValidDuration(d int) bool {
	for _, v := range Durations {
		if v == d {
			return true
		}
	}
	return false
}

// NextDuration returns the selectable duration following d, wrapping around.
func NextDuration(d int) int {
	for i, v := range Durations {
		if v == d {
			return Durations[(i+1)%len(Durations)]
		}
	}
	return Durations[0]
}

// Passage sources.
const (
	SourceCorpus = "corpus"
	SourceWords  = "words"
)

// Config defines test settings.
type Config struct {
	Duration     int
	Source       string
	PassagesPath string
	WordListPath string
	Lang         string
	Words        int
	CapsPct      float64
	PunctPct     float64
	PunctSet     string
}

// HistoryConfig defines filters and options for history output.
type HistoryConfig struct {
	Since  *time.Time
	Last   int
	Window int
}

// Status is the lifecycle state of a test run.
type Status int

// Test run states.
const (
	StatusIdle Status = iota
	StatusRunning
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Class classifies one passage character against the typed text.
type Class uint8

// Character classes.
const (
	ClassUntyped Class = iota
	ClassCorrect
	ClassIncorrect
)

func (c Class) String() string {
	switch c {
	case ClassCorrect:
		return "correct"
	case ClassIncorrect:
		return "incorrect"
	default:
		return "untyped"
	}
}

// Attempt is one completed timed test.
type Attempt struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	WPM             int       `json:"wpm"`
	Accuracy        float64   `json:"accuracy"`
	DurationSeconds int       `json:"duration_seconds"`
}

// History is the chronological list of attempts.
type History []Attempt

// Append returns a new history with a appended; h is left untouched.
func (h History) Append(a Attempt) History {
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	return append(out, a)
}
