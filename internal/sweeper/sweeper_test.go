package sweeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dorm-reservation-backend/config"
	"dorm-reservation-backend/internal/model"
)

// mockLifecycle is a mock implementation of the Lifecycle interface.
type mockLifecycle struct {
	mu        sync.Mutex
	due       []model.Reservation
	overdue   []model.Reservation
	listErr   error
	failIDs   map[int64]bool
	activated []int64
	completed []int64
	sweeps    int
}

func (m *mockLifecycle) ListDueForActivation(ctx context.Context) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweeps++
	return m.due, m.listErr
}

func (m *mockLifecycle) ListOverdue(ctx context.Context) ([]model.Reservation, error) {
	return m.overdue, m.listErr
}

func (m *mockLifecycle) Activate(ctx context.Context, id int64) (*model.Reservation, error) {
	if m.failIDs[id] {
		return nil, errors.New("room service unavailable")
	}
	m.activated = append(m.activated, id)
	return &model.Reservation{ID: id, Status: model.StatusActive}, nil
}

func (m *mockLifecycle) Complete(ctx context.Context, id int64) (*model.Reservation, error) {
	if m.failIDs[id] {
		return nil, errors.New("room service unavailable")
	}
	m.completed = append(m.completed, id)
	return &model.Reservation{ID: id, Status: model.StatusCompleted}, nil
}

func (m *mockLifecycle) Sweeps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweeps
}

func TestSweepOnce_ReportOnly(t *testing.T) {
	lc := &mockLifecycle{
		due:     []model.Reservation{{ID: 1, RoomID: 10}},
		overdue: []model.Reservation{{ID: 2, RoomID: 11}, {ID: 3, RoomID: 12}},
	}
	s := NewService(config.SweeperConfig{Enabled: true}, lc)

	res := s.SweepOnce(context.Background())
	assert.Equal(t, Result{Due: 1, Overdue: 2}, res)
	assert.Empty(t, lc.activated)
	assert.Empty(t, lc.completed)
}

func TestSweepOnce_AutoTransitions(t *testing.T) {
	lc := &mockLifecycle{
		due:     []model.Reservation{{ID: 1}, {ID: 4}},
		overdue: []model.Reservation{{ID: 2}, {ID: 3}},
		failIDs: map[int64]bool{4: true, 3: true},
	}
	s := NewService(config.SweeperConfig{Enabled: true, AutoActivate: true, AutoComplete: true}, lc)

	res := s.SweepOnce(context.Background())
	assert.Equal(t, Result{Due: 2, Overdue: 2, Activated: 1, Completed: 1}, res)
	assert.Equal(t, []int64{1}, lc.activated)
	assert.Equal(t, []int64{2}, lc.completed)
}

func TestSweepOnce_ListErrors(t *testing.T) {
	lc := &mockLifecycle{listErr: errors.New("db down")}
	s := NewService(config.SweeperConfig{Enabled: true, AutoActivate: true}, lc)

	assert.Equal(t, Result{}, s.SweepOnce(context.Background()))
}

func TestRun(t *testing.T) {
	t.Run("disabled returns immediately", func(t *testing.T) {
		lc := &mockLifecycle{}
		NewService(config.SweeperConfig{Enabled: false}, lc).Run(context.Background())
		assert.Equal(t, 0, lc.Sweeps())
	})

	t.Run("sweeps until cancelled", func(t *testing.T) {
		lc := &mockLifecycle{}
		s := NewService(config.SweeperConfig{Enabled: true, Interval: 10 * time.Millisecond}, lc)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			s.Run(ctx)
			close(done)
		}()

		assert.Eventually(t, func() bool { return lc.Sweeps() >= 3 }, time.Second, 5*time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("sweeper did not stop")
		}
	})
}
