package bot

import (
	"sync"
	"time"
)

// Scheduler owns the pending delayed bot actions, keyed per room so a
// whole room's tasks can be cancelled at once. It is safe for
// concurrent use.
//
// Cancellation wins races with firing: a task observes its cancelled
// flag after the timer fires and before running the callback, so a
// callback never runs for a room that was cancelled first.
type Scheduler struct {
	mu     sync.Mutex
	nextID uint64
	tasks  map[string]map[uint64]*task // room code → task id → task
}

type task struct {
	mu        sync.Mutex
	timer     *time.Timer
	cancelled bool
}

func (t *task) cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelled = true
	t.timer.Stop()
}

func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[string]map[uint64]*task)}
}

// Schedule runs fn after delay unless the room's tasks are cancelled
// first. fn runs on the timer goroutine.
//
// Precondition: delay > 0; fn must not be nil.
func (s *Scheduler) Schedule(code string, delay time.Duration, fn func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	tk := &task{}

	tk.timer = time.AfterFunc(delay, func() {
		tk.mu.Lock()
		cancelled := tk.cancelled
		tk.mu.Unlock()

		s.remove(code, id)
		if !cancelled {
			fn()
		}
	})

	if s.tasks[code] == nil {
		s.tasks[code] = make(map[uint64]*task)
	}
	s.tasks[code][id] = tk
	s.mu.Unlock()
}

// CancelRoom cancels every pending task for the room and returns how
// many were cancelled.
//
// Postcondition: no task scheduled for code before this call will run
// its callback after CancelRoom returns.
func (s *Scheduler) CancelRoom(code string) int {
	s.mu.Lock()
	pending := s.tasks[code]
	delete(s.tasks, code)
	s.mu.Unlock()

	for _, tk := range pending {
		tk.cancel()
	}
	return len(pending)
}

// CancelAll cancels every pending task across all rooms.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	all := s.tasks
	s.tasks = make(map[string]map[uint64]*task)
	s.mu.Unlock()

	for _, pending := range all {
		for _, tk := range pending {
			tk.cancel()
		}
	}
}

// Pending returns the number of not-yet-fired tasks for the room.
func (s *Scheduler) Pending(code string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks[code])
}

func (s *Scheduler) remove(code string, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pending, ok := s.tasks[code]; ok {
		delete(pending, id)
		if len(pending) == 0 {
			delete(s.tasks, code)
		}
	}
}
