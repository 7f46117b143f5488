// Package session implements the timed typing test lifecycle.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typetest/internal/compare"
	"github.com/verte-zerg/typetest/internal/logging"
	"github.com/verte-zerg/typetest/internal/model"
	"github.com/verte-zerg/typetest/internal/stats"
)

// Store persists attempt history. Load must not fail; it returns an empty history when no
// usable data exists.
type Store interface {
	Load(ctx context.Context) model.History
	Save(ctx context.Context, history model.History) error
}

// Options configures a Machine. Zero values select defaults.
type Options struct {
	Clock Clock
	Store Store
	// Duration is the initially selected test length in seconds.
	Duration int
	// OnTick receives clock ticks tagged with the run they belong to. It defaults to
	// calling TickRun directly, which is only safe when the clock fires on the caller's
	// goroutine.
	OnTick func(run uint64)
	Now    func() time.Time
	NewID  func() string
}

// Machine owns all state of a typing test: Idle, then Running, then Ended, and back to Running
// on the next Start. It is not safe for concurrent use; the host serializes calls.
type Machine struct {
	clock  Clock
	store  Store
	onTick func(run uint64)
	now    func() time.Time
	newID  func() string

	status    model.Status
	run       uint64
	target    []rune
	typed     []rune
	typedText string
	duration  int
	remaining int
	wpm       int
	correct   int

	history model.History
	last    *model.Attempt
}

// New builds a Machine and loads the stored history once.
func New(opts Options) *Machine {
	m := &Machine{
		clock:    opts.Clock,
		store:    opts.Store,
		onTick:   opts.OnTick,
		now:      opts.Now,
		newID:    opts.NewID,
		duration: opts.Duration,
	}
	if m.clock == nil {
		m.clock = &ManualClock{}
	}
	if m.onTick == nil {
		m.onTick = func(run uint64) { m.TickRun(run) }
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newID == nil {
		m.newID = func() string { return uuid.New().String() }
	}
	if !model.ValidDuration(m.duration) {
		m.duration = model.DefaultDuration
	}
	m.history = model.History{}
	if m.store != nil {
		m.history = m.store.Load(context.Background())
	}
	return m
}

// SetDuration selects the length of the next test. It is rejected while running or for a
// duration outside model.Durations.
func (m *Machine) SetDuration(seconds int) bool {
	if m.status == model.StatusRunning || !model.ValidDuration(seconds) {
		return false
	}
	m.duration = seconds
	return true
}

// Start begins a test of the given length over passage. It is a no-op while a test runs.
func (m *Machine) Start(duration int, passage string) bool {
	if m.status == model.StatusRunning || duration <= 0 {
		return false
	}
	m.clock.Stop()
	m.run++
	m.target = []rune(passage)
	m.typed = nil
	m.typedText = ""
	m.duration = duration
	m.remaining = duration
	m.wpm = 0
	m.correct = 0
	m.status = model.StatusRunning

	run := m.run
	m.clock.Start(func() { m.onTick(run) })
	logging.Logger.Debug("test started", "run", run, "duration", duration, "passage_len", len(m.target))
	return true
}

// Tick advances the current run by one second.
func (m *Machine) Tick() bool {
	return m.TickRun(m.run)
}

// TickRun advances run by one second. Ticks for any run other than the current one, or
// outside Running, are ignored. Reaching zero ends the test within the same call.
func (m *Machine) TickRun(run uint64) bool {
	if m.status != model.StatusRunning || run != m.run {
		return false
	}
	m.remaining--
	if m.remaining <= 0 {
		m.remaining = 0
		m.End()
	}
	return true
}

// Input replaces the typed text and rescores it. It is ignored outside Running.
func (m *Machine) Input(text string) bool {
	if m.status != model.StatusRunning {
		return false
	}
	m.typedText = text
	m.typed = []rune(text)
	m.correct = compare.ClassifyRunes(m.target, m.typed).Correct
	m.wpm = stats.WPM(text, float64(m.Elapsed()))
	return true
}

// End finishes the running test and records an attempt. Calling End when not running does
// nothing.
func (m *Machine) End() bool {
	if m.status != model.StatusRunning {
		return false
	}
	m.clock.Stop()
	m.status = model.StatusEnded

	acc, ok := stats.Accuracy(m.correct, len(m.typed))
	if !ok {
		acc = 0
	}
	attempt := model.Attempt{
		ID:              m.newID(),
		Timestamp:       m.now().UTC(),
		WPM:             m.wpm,
		Accuracy:        acc,
		DurationSeconds: m.duration,
	}
	m.history = m.history.Append(attempt)
	m.last = &attempt
	logging.Logger.Info("test ended",
		"run", m.run,
		"wpm", attempt.WPM,
		"accuracy", attempt.Accuracy,
		"typed", len(m.typed),
		"correct", m.correct,
	)

	if m.store != nil {
		if err := m.store.Save(context.Background(), m.history); err != nil {
			logging.Logger.Error("failed to save attempt history", "error", err, "attempts", len(m.history))
		}
	}
	return true
}

// Close stops the clock.
func (m *Machine) Close() {
	m.clock.Stop()
}

// Status returns the lifecycle state.
func (m *Machine) Status() model.Status { return m.status }

// Run returns the number of the current or most recent test.
func (m *Machine) Run() uint64 { return m.run }

// Duration returns the selected or running test length in seconds.
func (m *Machine) Duration() int { return m.duration }

// Remaining returns the seconds left in the current test.
func (m *Machine) Remaining() int { return m.remaining }

// Elapsed returns seconds elapsed in the current test.
func (m *Machine) Elapsed() int {
	if m.status == model.StatusIdle {
		return 0
	}
	return m.duration - m.remaining
}

// WPM returns the live words per minute, frozen once the test ends.
func (m *Machine) WPM() int { return m.wpm }

// Correct returns the number of correctly typed characters.
func (m *Machine) Correct() int { return m.correct }

// Target returns the passage of the current test.
func (m *Machine) Target() string { return string(m.target) }

// Typed returns the current typed text.
func (m *Machine) Typed() string { return m.typedText }

// TypedLen returns the number of typed characters.
func (m *Machine) TypedLen() int { return len(m.typed) }

// Classes classifies each passage character against the typed text.
func (m *Machine) Classes() []model.Class {
	return compare.ClassifyRunes(m.target, m.typed).Classes
}

// Accuracy returns the live accuracy; ok is false while nothing has been typed.
func (m *Machine) Accuracy() (float64, bool) {
	return stats.Accuracy(m.correct, len(m.typed))
}

// History returns a copy of the attempt history.
func (m *Machine) History() model.History {
	out := make(model.History, len(m.history))
	copy(out, m.history)
	return out
}

// LastAttempt returns the attempt recorded by the most recent End, if any.
func (m *Machine) LastAttempt() (model.Attempt, bool) {
	if m.last == nil {
		return model.Attempt{}, false
	}
	return *m.last, true
}
