package crawler

import (
	"context"
	"sync"
)

// Frontier is an unbounded FIFO of URLs waiting to be fetched.
//
// It also counts URLs that have been handed out by Next but not yet marked
// Done. The crawl is finished when the queue is empty and that count is zero;
// Next reports this by returning false to every waiting worker.
type Frontier struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []string
	inFlight int
	closed   bool
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	f := &Frontier{queue: make([]string, 0)}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Push appends a URL. Pushing after the frontier has drained or closed is a
// no-op and returns false.
func (f *Frontier) Push(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	f.queue = append(f.queue, rawURL)
	f.cond.Signal()
	return true
}

// Next removes and returns the oldest URL, blocking while the queue is empty
// but other URLs are still in flight (they may push more work). It returns
// false once no work remains or the frontier is closed.
//
// Every successful Next must be paired with a call to Done.
func (f *Frontier) Next() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for {
		if f.closed {
			return "", false
		}
		if len(f.queue) > 0 {
			next := f.queue[0]
			f.queue[0] = ""
			f.queue = f.queue[1:]
			f.inFlight++
			return next, true
		}
		if f.inFlight == 0 {
			// Drained: nobody can push anymore.
			f.closed = true
			f.cond.Broadcast()
			return "", false
		}
		f.cond.Wait()
	}
}

// Done marks one URL returned by Next as finished.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inFlight > 0 {
		f.inFlight--
	}
	if f.inFlight == 0 && len(f.queue) == 0 {
		f.cond.Broadcast()
	}
}

// Close stops the frontier. Pending URLs are discarded and all waiters wake.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.queue = nil
	f.cond.Broadcast()
}

// CloseOnCancel closes the frontier when ctx is cancelled. The returned
// function releases the watcher and must be called once the crawl ends.
func (f *Frontier) CloseOnCancel(ctx context.Context) (stop func()) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			f.Close()
		case <-done:
		}
	}()
	return func() { close(done) }
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// InFlight returns the number of URLs handed out and not yet marked Done.
func (f *Frontier) InFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}
