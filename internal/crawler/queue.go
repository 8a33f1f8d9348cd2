package crawler

import "sync"

// queue is an unbounded FIFO of claimed tasks shared by the workers.
// pending counts queued tasks plus tasks being visited, so the crawl is over
// when it drops to zero. Pushing never blocks, which lets a worker enqueue
// the children of the node it is visiting.
type queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   []task
	pending int
	closed  bool
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push adds t. It is a no-op once the queue is closed.
func (q *queue) push(t task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.tasks = append(q.tasks, t)
	q.pending++
	q.cond.Signal()
}

// pop blocks until a task is available. It returns false when every task
// is done or the queue was closed.
func (q *queue) pop() (task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.tasks) == 0 && q.pending > 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed || len(q.tasks) == 0 {
		return task{}, false
	}
	t := q.tasks[0]
	q.tasks[0] = task{}
	q.tasks = q.tasks[1:]
	return t, true
}

// done marks a popped task as finished.
func (q *queue) done() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending--
	if q.pending == 0 {
		q.cond.Broadcast()
	}
}

// close drops queued tasks and wakes every waiting worker.
func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.tasks = nil
	q.cond.Broadcast()
}
