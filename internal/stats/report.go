package stats

import (
	"context"

	"github.com/verte-zerg/typetest/internal/model"
)

// AttemptLister loads stored attempts matching a history filter.
type AttemptLister interface {
	ListAttempts(ctx context.Context, cfg model.HistoryConfig) ([]model.Attempt, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Attempts    []model.Attempt
	Summary     Summary
	WPMTrend    []float64
	AccTrend    []float64
	Window      int
	TotalStored int
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, lister AttemptLister, cfg model.HistoryConfig) (Report, error) {
	attempts, err := lister.ListAttempts(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	total := len(attempts)
	if cfg.Last > 0 && len(attempts) > cfg.Last {
		attempts = attempts[len(attempts)-cfg.Last:]
	}
	return Report{
		Attempts:    attempts,
		Summary:     Summarize(attempts),
		WPMTrend:    MovingAverage(WPMSeries(attempts), cfg.Window),
		AccTrend:    MovingAverage(AccuracySeries(attempts), cfg.Window),
		Window:      cfg.Window,
		TotalStored: total,
	}, nil
}
