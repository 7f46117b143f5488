package session

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typetest/internal/model"
)

type memStore struct {
	loaded  model.History
	saves   []model.History
	saveErr error
}

func (s *memStore) Load(context.Context) model.History {
	return s.loaded
}

func (s *memStore) Save(_ context.Context, history model.History) error {
	s.saves = append(s.saves, history)
	return s.saveErr
}

func newTestMachine(t *testing.T, st *memStore) (*Machine, *ManualClock) {
	t.Helper()
	clock := &ManualClock{}
	ids := 0
	m := New(Options{
		Clock: clock,
		Store: st,
		Now:   func() time.Time { return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC) },
		NewID: func() string {
			ids++
			return "attempt-" + strconv.Itoa(ids)
		},
	})
	return m, clock
}

func TestNewLoadsHistory(t *testing.T) {
	st := &memStore{loaded: model.History{{ID: "old", WPM: 30, Accuracy: 90, DurationSeconds: 60}}}
	m, _ := newTestMachine(t, st)

	assert.Equal(t, model.StatusIdle, m.Status())
	assert.Equal(t, model.DefaultDuration, m.Duration())
	require.Len(t, m.History(), 1)
	assert.Equal(t, "old", m.History()[0].ID)
}

func TestEndToEndTimedRun(t *testing.T) {
	st := &memStore{}
	m, clock := newTestMachine(t, st)

	require.True(t, m.Start(60, "cat"))
	assert.Equal(t, model.StatusRunning, m.Status())
	assert.Equal(t, 60, m.Remaining())
	assert.True(t, clock.Active())

	require.True(t, m.Input("cat"))
	assert.Equal(t, 3, m.Correct())
	assert.Equal(t, 0, m.WPM())

	for i := 1; i < 60; i++ {
		require.True(t, clock.Fire())
		assert.Equal(t, model.StatusRunning, m.Status(), "tick %d", i)
		assert.Equal(t, 60-i, m.Remaining())
	}
	require.True(t, clock.Fire())
	assert.Equal(t, model.StatusEnded, m.Status())
	assert.Equal(t, 0, m.Remaining())
	assert.False(t, clock.Active(), "clock must be stopped on end")

	history := m.History()
	require.Len(t, history, 1)
	assert.Equal(t, 60, history[0].DurationSeconds)
	assert.Equal(t, 100.0, history[0].Accuracy)
	assert.Equal(t, "attempt-1", history[0].ID)
	require.Len(t, st.saves, 1)
	assert.Equal(t, history, st.saves[0])
}

func TestWPMUsesElapsedTime(t *testing.T) {
	m, _ := newTestMachine(t, &memStore{})
	require.True(t, m.Start(60, "hello world again"))
	for i := 0; i < 30; i++ {
		require.True(t, m.Tick())
	}
	require.True(t, m.Input("hello world"))
	assert.Equal(t, 30, m.Elapsed())
	assert.Equal(t, 4, m.WPM())
}

func TestEndIsIdempotent(t *testing.T) {
	st := &memStore{}
	m, _ := newTestMachine(t, st)
	require.True(t, m.Start(30, "abc"))
	require.True(t, m.Input("abx"))

	assert.True(t, m.End())
	assert.False(t, m.End())
	assert.Len(t, m.History(), 1)
	assert.Len(t, st.saves, 1)

	last, ok := m.LastAttempt()
	require.True(t, ok)
	assert.Equal(t, 66.67, last.Accuracy)
}

func TestEndWithNothingTypedRecordsZeroAccuracy(t *testing.T) {
	m, _ := newTestMachine(t, &memStore{})
	require.True(t, m.Start(30, "abc"))
	_, ok := m.Accuracy()
	assert.False(t, ok, "live accuracy is undefined before typing")

	require.True(t, m.End())
	last, ok := m.LastAttempt()
	require.True(t, ok)
	assert.Zero(t, last.Accuracy)
	assert.Zero(t, last.WPM)
}

func TestEventsIgnoredOutsideRunning(t *testing.T) {
	m, clock := newTestMachine(t, &memStore{})

	assert.False(t, m.Tick())
	assert.False(t, m.Input("abc"))
	assert.False(t, m.End())
	assert.False(t, clock.Fire())
	assert.Equal(t, model.StatusIdle, m.Status())
	assert.Empty(t, m.History())

	require.True(t, m.Start(30, "abc"))
	require.True(t, m.End())
	assert.False(t, m.Tick())
	assert.False(t, m.Input("zzz"))
	assert.Equal(t, "", m.Typed())
}

func TestStartRejectedWhileRunning(t *testing.T) {
	m, clock := newTestMachine(t, &memStore{})
	require.True(t, m.Start(30, "first"))
	assert.False(t, m.Start(60, "second"))
	assert.Equal(t, "first", m.Target())
	assert.Equal(t, 1, clock.Starts())

	assert.False(t, m.Start(0, "x"))
}

func TestRestartFromEndedResetsState(t *testing.T) {
	st := &memStore{}
	m, clock := newTestMachine(t, st)
	require.True(t, m.Start(30, "abc"))
	require.True(t, m.Input("ab"))
	require.True(t, m.Tick())
	require.True(t, m.End())

	require.True(t, m.Start(60, "xyz"))
	assert.Equal(t, model.StatusRunning, m.Status())
	assert.Equal(t, 60, m.Remaining())
	assert.Equal(t, "", m.Typed())
	assert.Zero(t, m.Correct())
	assert.Zero(t, m.WPM())
	assert.Equal(t, 2, clock.Starts())
	assert.Len(t, m.History(), 1, "restart never touches recorded attempts")
}

func TestStaleTickIgnored(t *testing.T) {
	m, _ := newTestMachine(t, &memStore{})
	require.True(t, m.Start(30, "abc"))
	stale := m.Run()
	require.True(t, m.End())
	require.True(t, m.Start(30, "abc"))

	assert.False(t, m.TickRun(stale))
	assert.Equal(t, 30, m.Remaining())
	assert.True(t, m.TickRun(m.Run()))
	assert.Equal(t, 29, m.Remaining())
}

func TestSaveFailureKeepsAttempt(t *testing.T) {
	st := &memStore{saveErr: errors.New("disk full")}
	m, _ := newTestMachine(t, st)
	require.True(t, m.Start(30, "abc"))
	require.True(t, m.Input("abc"))

	assert.True(t, m.End())
	assert.Equal(t, model.StatusEnded, m.Status())
	assert.Len(t, m.History(), 1)
}

func TestHistoryIsNotMutatedInPlace(t *testing.T) {
	st := &memStore{}
	m, _ := newTestMachine(t, st)
	require.True(t, m.Start(30, "a"))
	require.True(t, m.End())
	first := m.History()

	require.True(t, m.Start(30, "a"))
	require.True(t, m.End())

	assert.Len(t, first, 1)
	require.Len(t, st.saves, 2)
	assert.Len(t, st.saves[0], 1)
	assert.Len(t, st.saves[1], 2)
	assert.Equal(t, st.saves[0][0], st.saves[1][0])
}

func TestSetDuration(t *testing.T) {
	m, _ := newTestMachine(t, &memStore{})
	assert.True(t, m.SetDuration(120))
	assert.Equal(t, 120, m.Duration())
	assert.False(t, m.SetDuration(45))

	require.True(t, m.Start(m.Duration(), "abc"))
	assert.False(t, m.SetDuration(30))
	assert.Equal(t, 120, m.Duration())
}

func TestClassesAndOverTyping(t *testing.T) {
	m, _ := newTestMachine(t, &memStore{})
	require.True(t, m.Start(30, "ab"))
	require.True(t, m.Input("axyz"))

	assert.Equal(t, []model.Class{model.ClassCorrect, model.ClassIncorrect}, m.Classes())
	acc, ok := m.Accuracy()
	require.True(t, ok)
	assert.Equal(t, 25.0, acc)
}

func TestTickerClockStops(t *testing.T) {
	clock := NewTickerClock(5 * time.Millisecond)
	ticks := make(chan struct{}, 100)
	clock.Start(func() { ticks <- struct{}{} })

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("expected a tick")
	}
	clock.Stop()
	time.Sleep(20 * time.Millisecond)
	for len(ticks) > 0 {
		<-ticks
	}
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, len(ticks), "no ticks after stop")
}
