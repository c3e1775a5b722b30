package queue

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordingPublisher struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.paths = append(p.paths, path)
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.paths))
	copy(out, p.paths)
	return out
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDispatcher_DeliversToPublisher(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := &recordingPublisher{}
	d := NewDispatcher(2, pub, zerolog.Nop())
	d.Start(ctx)

	d.Invalidate("/")
	d.Invalidate("/profile")
	d.Invalidate("/transformations/1")

	waitFor(t, func() bool { return len(pub.published()) == 3 })

	got := pub.published()
	sort.Strings(got)
	want := []string{"/", "/profile", "/transformations/1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("published paths: got %v, want %v", got, want)
		}
	}
}

func TestDispatcher_SamePathSameWorker(t *testing.T) {
	d := NewDispatcher(8, &recordingPublisher{}, zerolog.Nop())

	first := d.shardIndex("/transformations/42")
	for i := 0; i < 100; i++ {
		if got := d.shardIndex("/transformations/42"); got != first {
			t.Fatalf("shard index not stable: %d vs %d", got, first)
		}
	}
}

func TestDispatcher_FullQueueDropsWithoutBlocking(t *testing.T) {
	// Workers never started, so the single shard's buffer fills up and the
	// overflow must return immediately instead of blocking the caller.
	pub := &recordingPublisher{}
	d := NewDispatcher(1, pub, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Invalidate("/")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Invalidate blocked on a full queue")
	}
}

func TestDispatcher_PublishErrorDoesNotStopWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := &recordingPublisher{err: errors.New("broker down")}
	d := NewDispatcher(1, pub, zerolog.Nop())
	d.Start(ctx)

	d.Invalidate("/a")

	pub.mu.Lock()
	pub.err = nil
	pub.mu.Unlock()

	d.Invalidate("/b")
	waitFor(t, func() bool {
		for _, p := range pub.published() {
			if p == "/b" {
				return true
			}
		}
		return false
	})
}

func TestDispatcher_DefaultWorkerCount(t *testing.T) {
	d := NewDispatcher(0, &recordingPublisher{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("worker count: got %d, want %d", len(d.workers), defaultWorkers)
	}
}
