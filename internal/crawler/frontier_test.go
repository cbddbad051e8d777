package crawler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestFrontier_FIFOOrder(t *testing.T) {
	f := NewFrontier()

	urls := []string{
		"https://example.com/1",
		"https://example.com/2",
		"https://example.com/3",
	}
	for _, u := range urls {
		if !f.Push(u) {
			t.Fatalf("Push(%q) returned false", u)
		}
	}

	for i, expected := range urls {
		got, ok := f.Next()
		if !ok {
			t.Fatalf("Next() returned false at index %d", i)
		}
		if got != expected {
			t.Errorf("expected %q, got %q", expected, got)
		}
	}
	if f.InFlight() != 3 {
		t.Errorf("expected 3 in flight, got %d", f.InFlight())
	}
}

func TestFrontier_EmptyAndIdleDrains(t *testing.T) {
	f := NewFrontier()

	if _, ok := f.Next(); ok {
		t.Fatal("Next() on an idle empty frontier should return false")
	}
	if f.Push("https://example.com/late") {
		t.Error("Push() after drain should be rejected")
	}
}

func TestFrontier_LenAndInFlight(t *testing.T) {
	f := NewFrontier()

	f.Push("https://example.com/1")
	f.Push("https://example.com/2")
	if f.Len() != 2 {
		t.Errorf("expected length 2, got %d", f.Len())
	}

	f.Next()
	if f.Len() != 1 || f.InFlight() != 1 {
		t.Errorf("expected len 1 / in flight 1, got %d / %d", f.Len(), f.InFlight())
	}

	f.Done()
	if f.InFlight() != 0 {
		t.Errorf("expected 0 in flight after Done, got %d", f.InFlight())
	}
}

func TestFrontier_WaitsForInFlightWork(t *testing.T) {
	f := NewFrontier()
	f.Push("https://example.com/root")

	root, ok := f.Next()
	if !ok || root != "https://example.com/root" {
		t.Fatalf("unexpected first Next(): %q %v", root, ok)
	}

	got := make(chan string, 1)
	go func() {
		next, ok := f.Next()
		if !ok {
			got <- "<drained>"
			return
		}
		got <- next
	}()

	// The queue is empty but root is still in flight, so the waiter must
	// not conclude the crawl is over.
	select {
	case v := <-got:
		t.Fatalf("Next() returned early with %q while work was in flight", v)
	case <-time.After(50 * time.Millisecond):
	}

	f.Push("https://example.com/child")
	f.Done()

	select {
	case v := <-got:
		if v != "https://example.com/child" {
			t.Errorf("expected child URL, got %q", v)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken by Push")
	}
}

func TestFrontier_DoneWakesAllWaiters(t *testing.T) {
	f := NewFrontier()
	f.Push("https://example.com/root")
	f.Next()

	const waiters = 8
	var wg sync.WaitGroup
	results := make(chan bool, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := f.Next()
			results <- ok
		}()
	}

	time.Sleep(20 * time.Millisecond)
	f.Done()

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("waiters did not exit after the last in-flight URL completed")
	}

	close(results)
	for ok := range results {
		if ok {
			t.Error("waiter received work from an empty frontier")
		}
	}
}

func TestFrontier_Close(t *testing.T) {
	f := NewFrontier()
	f.Push("https://example.com/a")
	f.Push("https://example.com/b")
	f.Next()

	f.Close()

	if _, ok := f.Next(); ok {
		t.Error("Next() after Close() should return false")
	}
	if f.Len() != 0 {
		t.Errorf("expected queue to be discarded, got length %d", f.Len())
	}
	if f.Push("https://example.com/c") {
		t.Error("Push() after Close() should be rejected")
	}
}

func TestFrontier_CloseOnCancel(t *testing.T) {
	f := NewFrontier()
	f.Push("https://example.com/root")
	f.Next()

	ctx, cancel := context.WithCancel(context.Background())
	stop := f.CloseOnCancel(ctx)
	defer stop()

	got := make(chan bool, 1)
	go func() {
		_, ok := f.Next()
		got <- ok
	}()

	cancel()

	select {
	case ok := <-got:
		if ok {
			t.Error("Next() should return false after cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("cancellation did not wake the waiter")
	}
}

func TestFrontier_ConcurrentProducersConsumers(t *testing.T) {
	f := NewFrontier()
	v := NewVisitedSet()

	// Each processed page "links" to the next few numbers; the frontier
	// must hand out every number exactly once and then drain.
	const limit = 500
	seed := "https://example.com/0"
	v.Claim(seed)
	f.Push(seed)

	var mu sync.Mutex
	processed := make(map[string]int)

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				u, ok := f.Next()
				if !ok {
					return
				}
				mu.Lock()
				processed[u]++
				mu.Unlock()

				var n int
				fmt.Sscanf(u, "https://example.com/%d", &n)
				for _, child := range []int{n + 1, n + 2, n * 2} {
					if child >= limit {
						continue
					}
					link := fmt.Sprintf("https://example.com/%d", child)
					if v.Claim(link) {
						f.Push(link)
					}
				}
				f.Done()
			}
		}()
	}
	wg.Wait()

	if len(processed) != limit {
		t.Errorf("expected %d processed URLs, got %d", limit, len(processed))
	}
	for u, n := range processed {
		if n != 1 {
			t.Errorf("%s processed %d times", u, n)
		}
	}
}
