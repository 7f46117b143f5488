package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typetest/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"#", "WPM", "Accuracy"}
	rows := [][]string{
		{"1", "72", "97.50%"},
		{"12", "8", "100.00%"},
	}
	rightAlign := map[int]bool{0: true, 1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != " # WPM Accuracy" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != " 1  72   97.50%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "12   8  100.00%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestRenderAttemptTableNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	attempts := []model.Attempt{
		{Timestamp: base, WPM: 40, Accuracy: 90, DurationSeconds: 60},
		{Timestamp: base.Add(time.Hour), WPM: 55, Accuracy: 95.5, DurationSeconds: 30},
	}
	var buf bytes.Buffer
	if err := RenderAttemptTable(&buf, attempts); err != nil {
		t.Fatalf("RenderAttemptTable failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[2], "55") || !strings.Contains(lines[2], "95.50%") {
		t.Fatalf("expected newest attempt first, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "1m00s") {
		t.Fatalf("expected duration column, got %q", lines[3])
	}
}

func TestRenderAttemptTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderAttemptTable(&buf, nil); err != nil {
		t.Fatalf("RenderAttemptTable failed: %v", err)
	}
	if buf.String() != "No attempts found.\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
