package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/pixelmuse/imagevault/internal/api/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// PathPublisher delivers one invalidation signal downstream.
type PathPublisher interface {
	Publish(ctx context.Context, path string) error
}

// Dispatcher fans cache invalidation signals out to a fixed set of workers
// using consistent hashing on the logical path, so repeated invalidations of
// the same path reach the rendering layer in order. Delivery is
// fire-and-forget: a full worker channel drops the signal rather than
// blocking the request that triggered it.
type Dispatcher struct {
	workers []chan string
	pub     PathPublisher
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, pub PathPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan string, numWorkers),
		pub:     pub,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Invalidate enqueues a stale-path signal. Implements ports.CacheNotifier.
func (d *Dispatcher) Invalidate(path string) {
	select {
	case d.workers[d.shardIndex(path)] <- path:
	default:
		metrics.InvalidationsDroppedTotal.Inc()
		d.log.Warn().Str("path", path).Msg("invalidation dropped, worker queue full")
	}
}

// shardIndex maps a logical path deterministically to a worker index.
func (d *Dispatcher) shardIndex(path string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(path))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-ch:
			if !ok {
				return
			}
			if err := d.pub.Publish(ctx, path); err != nil {
				d.log.Error().Err(err).
					Str("path", path).
					Int("worker_id", id).
					Msg("invalidation publish failed")
				continue
			}
			metrics.InvalidationsPublishedTotal.Inc()
		}
	}
}
