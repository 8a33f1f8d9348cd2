package crawler

import (
	"testing"
	"time"
)

// TestQueue tests the worker queue.
func TestQueue(t *testing.T) {
	t.Parallel()

	t.Run("pops in push order", func(t *testing.T) {
		t.Parallel()

		q := newQueue()
		for _, id := range []string{"1", "2", "3"} {
			q.push(task{id: id})
		}
		for _, want := range []string{"1", "2", "3"} {
			got, ok := q.pop()
			if !ok {
				t.Fatalf("expected task %s, got none", want)
			}
			if got.id != want {
				t.Errorf("expected %s, got %s", want, got.id)
			}
		}
	})

	t.Run("pop reports drained once every task is done", func(t *testing.T) {
		t.Parallel()

		q := newQueue()
		q.push(task{id: "1"})
		if _, ok := q.pop(); !ok {
			t.Fatal("expected a task")
		}
		q.done()
		if _, ok := q.pop(); ok {
			t.Error("expected drained queue")
		}
	})

	t.Run("pop waits for a task pushed by a busy worker", func(t *testing.T) {
		t.Parallel()

		q := newQueue()
		q.push(task{id: "1"})
		if _, ok := q.pop(); !ok {
			t.Fatal("expected a task")
		}

		got := make(chan string, 1)
		go func() {
			tk, _ := q.pop()
			got <- tk.id
		}()

		q.push(task{id: "2"})
		q.done()
		select {
		case id := <-got:
			if id != "2" {
				t.Errorf("expected 2, got %q", id)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("pop did not wake up")
		}
	})

	t.Run("close wakes a blocked pop", func(t *testing.T) {
		t.Parallel()

		q := newQueue()
		q.push(task{id: "1"})
		if _, ok := q.pop(); !ok {
			t.Fatal("expected a task")
		}

		got := make(chan bool, 1)
		go func() {
			_, ok := q.pop()
			got <- ok
		}()

		q.close()
		select {
		case ok := <-got:
			if ok {
				t.Error("expected pop to fail after close")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("pop did not wake up")
		}
	})

	t.Run("push after close is ignored", func(t *testing.T) {
		t.Parallel()

		q := newQueue()
		q.close()
		q.push(task{id: "1"})
		if _, ok := q.pop(); ok {
			t.Error("expected no task after close")
		}
		if q.pending != 0 {
			t.Errorf("expected 0 pending, got %d", q.pending)
		}
	})
}
