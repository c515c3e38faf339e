package scanner

import "sync"

// dirQueue is the pending-directory work set shared by the workers of one root.
// Workers pop a directory, read it, push its subdirectories and call done. The
// walk is over when the queue is empty and no worker holds a directory.
type dirQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []dirJob
	active int
	closed bool
}

func newDirQueue() *dirQueue {
	q := &dirQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *dirQueue) push(job dirJob) {
	q.mu.Lock()
	if !q.closed {
		q.items = append(q.items, job)
		q.cond.Signal()
	}
	q.mu.Unlock()
}

// pop blocks until a directory is available. It returns false once the walk is
// finished or the queue was closed.
func (q *dirQueue) pop() (dirJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && q.active > 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed || len(q.items) == 0 {
		return dirJob{}, false
	}

	// LIFO keeps the pending set close to the depth of the tree.
	last := len(q.items) - 1
	job := q.items[last]
	q.items[last] = dirJob{}
	q.items = q.items[:last]
	q.active++
	return job, true
}

// done marks a popped directory as fully processed.
func (q *dirQueue) done() {
	q.mu.Lock()
	q.active--
	if q.active == 0 && len(q.items) == 0 {
		q.cond.Broadcast()
	}
	q.mu.Unlock()
}

// close wakes every waiting worker and drops pending directories.
func (q *dirQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.items = nil
	q.cond.Broadcast()
	q.mu.Unlock()
}
