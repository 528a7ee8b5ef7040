// Package scheduler orders pending fusion requests by priority, so a
// full-map fuse_all can jump ahead of several small stale-area fuse_area
// requests already queued for the fused lock. It wraps the priority queue
// the teacher's go.mod carried as an indirect dependency but never actually
// imported.
package scheduler

import (
	priorityqueue "github.com/kyroy/priority-queue"

	"github.com/kestrel-robotics/terrainmap/internal/grid"
)

// Job is a pending fusion request: a target rectangle and a channel closed
// once the request has been processed.
type Job struct {
	TopLeft grid.Index
	Size    grid.Size
	Done    chan struct{}
}

// NewJob constructs a Job with its completion channel already allocated.
func NewJob(topLeft grid.Index, size grid.Size) *Job {
	return &Job{TopLeft: topLeft, Size: size, Done: make(chan struct{})}
}

// Scheduler is a priority queue of pending fusion jobs. It is not safe for
// concurrent use by multiple goroutines on its own; the map engine guards
// it with its own lock.
type Scheduler struct {
	pq *priorityqueue.PriorityQueue
}

// New returns an empty scheduler.
func New() *Scheduler {
	return &Scheduler{pq: priorityqueue.NewPriorityQueue()}
}

// Submit enqueues a job at the given priority; higher priority is served
// first. A full-map fuse_all should be submitted at a higher priority than
// a small fuse_area so it is not starved behind a backlog of small
// requests.
func (s *Scheduler) Submit(job *Job, priority float64) {
	s.pq.Insert(job, priority)
}

// Next pops the highest-priority pending job, if any.
func (s *Scheduler) Next() (*Job, bool) {
	if s.pq.Len() == 0 {
		return nil, false
	}
	item := s.pq.PopHighest()
	if item == nil {
		return nil, false
	}
	job, ok := item.Value.(*Job)
	return job, ok
}

// Len reports the number of jobs currently queued.
func (s *Scheduler) Len() int {
	return s.pq.Len()
}

// AreaPriority returns a priority that favors full (or large) areas: the
// whole-grid fuse_all call should not sit behind a long tail of small
// fuse_area requests.
func AreaPriority(size grid.Size, gridRows, gridCols int) float64 {
	total := float64(gridRows * gridCols)
	if total <= 0 {
		return 0
	}
	return float64(size.Rows*size.Cols) / total
}
