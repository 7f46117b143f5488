package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/typetest/internal/model"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]model.Attempt{
		{WPM: 40, Accuracy: 90, DurationSeconds: 60},
		{WPM: 60, Accuracy: 100, DurationSeconds: 30},
	})
	if s.Attempts != 2 || s.BestWPM != 60 || s.TotalTime != 90 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.AvgWPM != 50 || s.AvgAccuracy != 95 {
		t.Fatalf("unexpected averages: %+v", s)
	}
	if empty := Summarize(nil); empty != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", empty)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	got = MovingAverage([]float64{1, 2}, 1)
	if got[0] != 1 || got[1] != 2 {
		t.Fatalf("expected copy for window 1, got %v", got)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("unexpected flat sparkline: %q", got)
	}
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	err := RenderSummary(&buf, []model.Attempt{
		{WPM: 45, Accuracy: 92.5, DurationSeconds: 60},
		{WPM: 55, Accuracy: 97.5, DurationSeconds: 60},
	})
	if err != nil {
		t.Fatalf("RenderSummary failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Attempts: 2", "Avg WPM: 50.00", "Best WPM: 55", "Avg Accuracy: 95.00%", "Time typed: 2m00s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q: %s", want, out)
		}
	}
}

func TestRenderCurves(t *testing.T) {
	var buf bytes.Buffer
	attempts := []model.Attempt{
		{WPM: 40, Accuracy: 90},
		{WPM: 50, Accuracy: 95},
		{WPM: 45, Accuracy: 99},
	}
	if err := RenderCurvesWithSize(&buf, attempts, 2, 40, 4, false); err != nil {
		t.Fatalf("RenderCurves failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "WPM (") || !strings.Contains(out, "Accuracy % (min 0.00, max 100.00") {
		t.Fatalf("expected both charts: %s", out)
	}
}
