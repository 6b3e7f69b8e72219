package timer

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStopped is returned when scheduling on a stopped scheduler.
var ErrStopped = errors.New("scheduler is stopped")

// Job is a callback scheduled for a point in time
type Job struct {
	ID    string
	RunAt time.Time
	Fn    func(ctx context.Context)
	index int // index in the heap (for heap.Interface)
}

// jobHeap is a min-heap of Jobs ordered by RunAt
type jobHeap []*Job

func (h jobHeap) Len() int { return len(h) }

func (h jobHeap) Less(i, j int) bool {
	return h[i].RunAt.Before(h[j].RunAt)
}

func (h jobHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *jobHeap) Push(x interface{}) {
	n := len(*h)
	job := x.(*Job)
	job.index = n
	*h = append(*h, job)
}

func (h *jobHeap) Pop() interface{} {
	old := *h
	n := len(old)
	job := old[n-1]
	old[n-1] = nil // avoid memory leak
	job.index = -1
	*h = old[0 : n-1]
	return job
}

// Scheduler runs jobs at their time on a fixed pool of workers
type Scheduler struct {
	heap    jobHeap
	mu      sync.Mutex
	wakeup  chan struct{}
	jobs    map[string]*Job // for O(1) lookup by ID
	queue   chan *Job
	workers int
	wg      sync.WaitGroup
	stopped bool
	stopCh  chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	now     func() time.Time
}

// NewScheduler creates a scheduler with the given number of workers
func NewScheduler(workers int) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		heap:    make(jobHeap, 0),
		wakeup:  make(chan struct{}, 1),
		jobs:    make(map[string]*Job),
		queue:   make(chan *Job),
		workers: workers,
		stopCh:  make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
		now:     time.Now,
	}
	heap.Init(&s.heap)
	return s
}

// Start starts the dispatch loop and the worker pool
func (s *Scheduler) Start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	s.wg.Add(1)
	go s.run()
}

// Stop cancels running jobs and waits for the workers to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

// Schedule adds a job, replacing any pending job with the same ID
func (s *Scheduler) Schedule(id string, runAt time.Time, fn func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}

	if existing, ok := s.jobs[id]; ok {
		heap.Remove(&s.heap, existing.index)
		delete(s.jobs, id)
	}

	job := &Job{
		ID:    id,
		RunAt: runAt,
		Fn:    fn,
	}

	heap.Push(&s.heap, job)
	s.jobs[id] = job

	// Wake up the dispatcher if this is the earliest job
	if s.heap[0] == job {
		select {
		case s.wakeup <- struct{}{}:
		default:
		}
	}

	return nil
}

// Cancel removes a pending job
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return false
	}

	heap.Remove(&s.heap, job.index)
	delete(s.jobs, id)
	return true
}

// Next returns the run time of a pending job
func (s *Scheduler) Next(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return time.Time{}, false
	}
	return job.RunAt, true
}

// run is the dispatch loop
func (s *Scheduler) run() {
	defer s.wg.Done()

	for {
		s.mu.Lock()

		if s.stopped {
			s.mu.Unlock()
			return
		}

		var waitDuration time.Duration
		var due *Job
		if s.heap.Len() == 0 {
			waitDuration = 24 * time.Hour
		} else {
			waitDuration = s.heap[0].RunAt.Sub(s.now())
			if waitDuration <= 0 {
				due = heap.Pop(&s.heap).(*Job)
				delete(s.jobs, due.ID)
			}
		}

		s.mu.Unlock()

		if due != nil {
			select {
			case s.queue <- due:
			case <-s.stopCh:
				return
			}
			continue
		}

		timer := time.NewTimer(waitDuration)
		select {
		case <-timer.C:
		case <-s.wakeup:
			timer.Stop()
		case <-s.stopCh:
			timer.Stop()
			return
		}
	}
}

// worker executes due jobs
func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case job := <-s.queue:
			job.Fn(s.ctx)
		case <-s.stopCh:
			return
		}
	}
}

// Stats returns statistics about the scheduler
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		ScheduledJobs: len(s.jobs),
		Workers:       s.workers,
	}
}

// Stats contains statistics about the scheduler
type Stats struct {
	ScheduledJobs int
	Workers       int
}
