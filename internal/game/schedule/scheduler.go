package schedule

import (
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler runs delayed callbacks that belong to a generation of owner state.
//
// Every callback captures the generation current at scheduling time. When the
// timer fires, the scheduler acquires the owner's lock through enter, compares
// the captured generation against the current one and only then invokes the
// callback. Retire bumps the generation so callbacks from an earlier session
// become no-ops even if their timer already fired and is waiting on the lock.
type Scheduler struct {
	clock Clock
	enter func()
	leave func()

	generation atomic.Uint64

	mu      sync.Mutex
	pending map[*Task]struct{}
}

// Task is a callback scheduled through a Scheduler.
type Task struct {
	generation uint64
	timer      Timer
}

// Generation reports the generation the task was scheduled under.
func (t *Task) Generation() uint64 {
	return t.generation
}

// NewScheduler creates a scheduler. enter and leave bracket every callback and
// normally lock and unlock the state the callbacks mutate.
func NewScheduler(clock Clock, enter, leave func()) *Scheduler {
	if clock == nil {
		clock = NewRealClock()
	}
	return &Scheduler{
		clock:   clock,
		enter:   enter,
		leave:   leave,
		pending: make(map[*Task]struct{}),
	}
}

// Clock returns the clock driving the scheduler.
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// Generation returns the current generation.
func (s *Scheduler) Generation() uint64 {
	return s.generation.Load()
}

// After schedules fn to run after d unless the generation changes first.
func (s *Scheduler) After(d time.Duration, fn func()) *Task {
	task := &Task{generation: s.generation.Load()}

	s.mu.Lock()
	s.pending[task] = struct{}{}
	s.mu.Unlock()

	task.timer = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.pending, task)
		s.mu.Unlock()

		s.enter()
		defer s.leave()
		if task.generation != s.generation.Load() {
			return
		}
		fn()
	})
	return task
}

// Retire invalidates every callback scheduled so far and returns the new
// generation. Callers must hold the lock that enter acquires.
func (s *Scheduler) Retire() uint64 {
	next := s.generation.Add(1)

	s.mu.Lock()
	stale := make([]*Task, 0, len(s.pending))
	for task := range s.pending {
		stale = append(stale, task)
	}
	s.pending = make(map[*Task]struct{})
	s.mu.Unlock()

	for _, task := range stale {
		if task.timer != nil {
			task.timer.Stop()
		}
	}
	return next
}

// Pending returns the number of callbacks that have neither fired nor been retired.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
