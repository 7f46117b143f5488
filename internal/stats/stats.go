package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/typetest/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a list of attempts.
type Summary struct {
	Attempts    int
	AvgWPM      float64
	BestWPM     int
	AvgAccuracy float64
	TotalTime   int
}

// Summarize computes aggregate numbers for attempts.
func Summarize(attempts []model.Attempt) Summary {
	var s Summary
	if len(attempts) == 0 {
		return s
	}
	var totalWPM, totalAcc float64
	for _, a := range attempts {
		totalWPM += float64(a.WPM)
		totalAcc += a.Accuracy
		s.TotalTime += a.DurationSeconds
		if a.WPM > s.BestWPM {
			s.BestWPM = a.WPM
		}
	}
	s.Attempts = len(attempts)
	s.AvgWPM = totalWPM / float64(len(attempts))
	s.AvgAccuracy = totalAcc / float64(len(attempts))
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := minMax(values)
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkChars[clamp(idx, 0, last)])
	}
	return b.String()
}

// WPMSeries extracts per-attempt WPM values.
func WPMSeries(attempts []model.Attempt) []float64 {
	out := make([]float64, len(attempts))
	for i, a := range attempts {
		out[i] = float64(a.WPM)
	}
	return out
}

// AccuracySeries extracts per-attempt accuracy values.
func AccuracySeries(attempts []model.Attempt) []float64 {
	out := make([]float64, len(attempts))
	for i, a := range attempts {
		out[i] = a.Accuracy
	}
	return out
}

// RenderSummary prints a summary block for attempts.
func RenderSummary(w io.Writer, attempts []model.Attempt) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	s := Summarize(attempts)
	lines := []string{
		"Summary",
		fmt.Sprintf("Attempts: %d", s.Attempts),
		fmt.Sprintf("Avg WPM: %.2f", s.AvgWPM),
		fmt.Sprintf("Best WPM: %d", s.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", s.AvgAccuracy),
		fmt.Sprintf("Time typed: %s", formatSeconds(s.TotalTime)),
		fmt.Sprintf("Trend: %s", Sparkline(WPMSeries(attempts))),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints moving-average trend charts for WPM and accuracy.
func RenderCurves(w io.Writer, attempts []model.Attempt, window int) error {
	return RenderCurvesWithSize(w, attempts, window, 0, defaultPlotHeight, false)
}

// RenderCurvesWithSize prints trend charts sized to a given total width.
func RenderCurvesWithSize(w io.Writer, attempts []model.Attempt, window, totalWidth, height int, forceColor bool) error {
	if len(attempts) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	charts := []Series{
		{Name: "WPM", Values: MovingAverage(WPMSeries(attempts), window)},
		{Name: "Accuracy %", Values: MovingAverage(AccuracySeries(attempts), window), Min: ptr(0), Max: ptr(100)},
	}
	for _, s := range charts {
		if err := PlotSeriesWithColor(w, s, width, height, forceColor); err != nil {
			return err
		}
	}
	return nil
}

func formatSeconds(total int) string {
	if total < 60 {
		return fmt.Sprintf("%ds", total)
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func minMax(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
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

func ptr(v float64) *float64 {
	return &v
}
