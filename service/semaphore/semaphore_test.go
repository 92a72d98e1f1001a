package semaphore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/flightcore/internal/clock"
	"github.com/viant/flightcore/service/scheduler"
)

func newScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()
	s := scheduler.New(scheduler.WithMaxTasks(8))
	require.NoError(t, s.Init(clock.NewManual(0).Source()))
	return s
}

func dispatch(t *testing.T, s *scheduler.Scheduler, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := s.SelectAndRun()
		require.NoError(t, err)
	}
}

type taker struct {
	name string
	sem  *Blocking
	log  *[]string
}

func takeTask(f *scheduler.Frame, arg any) scheduler.Result {
	tk := arg.(*taker)
	switch f.Resume() {
	case 0, 1:
		if r := tk.sem.Take(f, 1); r != scheduler.Success {
			return r
		}
	case 2:
		return f.Block(2)
	}
	*tk.log = append(*tk.log, tk.name)
	return f.Block(2)
}

func TestSpin(t *testing.T) {
	s := newScheduler(t)
	sem := NewSpin(1)
	var log []string
	attempts := 0

	_, err := s.Start(func(f *scheduler.Frame, arg any) scheduler.Result {
		switch f.Resume() {
		case 0:
			if !sem.TryTake() {
				return scheduler.Error
			}
			log = append(log, "holder:take")
			return f.Yield(1)
		case 1:
			log = append(log, "holder:give")
			sem.Give()
		}
		return f.Block(2)
	}, nil)
	require.NoError(t, err)

	_, err = s.Start(func(f *scheduler.Frame, arg any) scheduler.Result {
		switch f.Resume() {
		case 0, 1:
			attempts++
			if r := sem.Take(f, 1); r != scheduler.Success {
				return r
			}
			log = append(log, "spinner:take")
		}
		return f.Block(2)
	}, nil)
	require.NoError(t, err)

	dispatch(t, s, 4)
	assert.Equal(t, []string{"holder:take", "holder:give", "spinner:take"}, log)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 0, sem.Count())
	assert.False(t, sem.TryTake())
}

func TestBlocking_FIFOHandoff(t *testing.T) {
	s := newScheduler(t)
	sem := NewBlocking(s, 0, 4)
	var log []string

	for _, name := range []string{"a", "b", "c"} {
		_, err := s.Start(takeTask, &taker{name: name, sem: sem, log: &log})
		require.NoError(t, err)
	}
	dispatch(t, s, 3)
	assert.Equal(t, 3, sem.Waiting())
	assert.Equal(t, 0, s.ReadyLen())

	sem.Give()
	_, err := s.Start(takeTask, &taker{name: "d", sem: sem, log: &log})
	require.NoError(t, err)
	dispatch(t, s, 2)
	assert.Equal(t, []string{"a"}, log, "late taker does not overtake queued waiters")
	assert.Equal(t, 3, sem.Waiting())

	sem.Give()
	sem.Give()
	sem.Give()
	dispatch(t, s, 3)
	assert.Equal(t, []string{"a", "b", "c", "d"}, log)
	assert.Equal(t, 0, sem.Count())
	assert.Equal(t, 0, sem.Waiting())
}

func TestBlocking_Available(t *testing.T) {
	s := newScheduler(t)
	sem := NewBlocking(s, 1, 2)
	var log []string
	_, err := s.Start(takeTask, &taker{name: "a", sem: sem, log: &log})
	require.NoError(t, err)
	dispatch(t, s, 1)
	assert.Equal(t, []string{"a"}, log)
	assert.Equal(t, 0, sem.Count())
	assert.False(t, sem.TryTake())
	sem.Give()
	assert.True(t, sem.TryTake())
}

func TestBlocking_WaitersFull(t *testing.T) {
	s := newScheduler(t)
	sem := NewBlocking(s, 0, 1)
	var log []string
	first, err := s.Start(takeTask, &taker{name: "a", sem: sem, log: &log})
	require.NoError(t, err)
	second, err := s.Start(takeTask, &taker{name: "b", sem: sem, log: &log})
	require.NoError(t, err)

	dispatch(t, s, 2)
	state, ok := s.State(first)
	require.True(t, ok)
	assert.Equal(t, scheduler.Blocked, state)
	_, ok = s.State(second)
	assert.False(t, ok, "task that cannot be queued is killed")
}

func TestBlocking_KilledWaiter(t *testing.T) {
	testCases := []struct {
		description string
		cancel      bool
	}{
		{description: "cancelled explicitly", cancel: true},
		{description: "skipped on give", cancel: false},
	}
	for _, testCase := range testCases {
		s := newScheduler(t)
		sem := NewBlocking(s, 0, 2)
		var log []string
		id, err := s.Start(takeTask, &taker{name: "a", sem: sem, log: &log})
		require.NoError(t, err)
		dispatch(t, s, 1)

		require.NoError(t, s.Kill(id))
		if testCase.cancel {
			sem.Cancel(id)
			assert.Equal(t, 0, sem.Waiting(), testCase.description)
		}
		sem.Give()
		assert.Equal(t, 1, sem.Count(), testCase.description)
		assert.Equal(t, 0, sem.Waiting(), testCase.description)
	}
}

func TestBlocking_CancelGranted(t *testing.T) {
	s := newScheduler(t)
	sem := NewBlocking(s, 0, 2)
	var log []string
	id, err := s.Start(takeTask, &taker{name: "a", sem: sem, log: &log})
	require.NoError(t, err)
	dispatch(t, s, 1)

	sem.Give()
	require.NoError(t, s.Kill(id))
	sem.Cancel(id)
	assert.Equal(t, 1, sem.Count(), "unit handed to a killed task is returned")
}

func TestBlocking_KilledGranteeReleasesUnit(t *testing.T) {
	s := newScheduler(t)
	sem := NewBlocking(s, 0, 1)
	var log []string
	a, err := s.Start(takeTask, &taker{name: "a", sem: sem, log: &log})
	require.NoError(t, err)
	dispatch(t, s, 1)

	sem.Give()
	require.NoError(t, s.Kill(a))
	assert.Equal(t, 0, sem.Waiting())

	b, err := s.Start(takeTask, &taker{name: "b", sem: sem, log: &log})
	require.NoError(t, err)
	dispatch(t, s, 1)
	assert.Equal(t, []string{"b"}, log, "unit granted to the killed task is reclaimed")
	assert.Equal(t, 0, sem.Count())
	state, ok := s.State(b)
	require.True(t, ok)
	assert.Equal(t, scheduler.Blocked, state)

	sem.Give()
	assert.Equal(t, 1, sem.Count())
	assert.Equal(t, 0, sem.Waiting())
}
