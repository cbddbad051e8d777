package crawler

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

func TestVisitedSet_ClaimNew(t *testing.T) {
	v := NewVisitedSet()

	if !v.Claim("https://example.com/a") {
		t.Error("Claim() should return true for a new URL")
	}
	if !v.Contains("https://example.com/a") {
		t.Error("Contains() should return true after Claim()")
	}
	if v.Len() != 1 {
		t.Errorf("expected length 1, got %d", v.Len())
	}
}

func TestVisitedSet_ClaimDuplicate(t *testing.T) {
	v := NewVisitedSet()

	v.Claim("https://example.com/a")
	if v.Claim("https://example.com/a") {
		t.Error("Claim() should return false for an already claimed URL")
	}
	if v.Len() != 1 {
		t.Errorf("expected length 1, got %d", v.Len())
	}
}

func TestVisitedSet_NoCanonicalization(t *testing.T) {
	v := NewVisitedSet()

	urls := []string{
		"https://example.com/page",
		"https://example.com/page/",
		"https://example.com/page.html",
		"https://example.com/Page",
	}
	for _, u := range urls {
		if !v.Claim(u) {
			t.Errorf("Claim(%q) should be distinct from the other spellings", u)
		}
	}
}

func TestVisitedSet_ConcurrentClaimSingleOwner(t *testing.T) {
	v := NewVisitedSet()

	const goroutines = 64
	const urls = 200

	var owners [urls]atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for i := 0; i < urls; i++ {
				if v.Claim(fmt.Sprintf("https://example.com/p/%d", i)) {
					owners[i].Add(1)
				}
			}
		}()
	}
	close(start)
	wg.Wait()

	for i := range owners {
		if n := owners[i].Load(); n != 1 {
			t.Errorf("url %d claimed %d times, want exactly 1", i, n)
		}
	}
	if v.Len() != urls {
		t.Errorf("expected %d claimed URLs, got %d", urls, v.Len())
	}
}
