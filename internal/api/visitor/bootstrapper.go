package visitor

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Bootstrapper runs visitor bootstraps on a fixed set of workers, sharded
// by visitor id, so a burst of new visitors does not turn into a burst of
// concurrent validate calls against the backend.
type Bootstrapper struct {
	workers []chan *Visitor
	timeout time.Duration
	log     zerolog.Logger
}

// NewBootstrapper creates numWorkers workers. If numWorkers <= 0,
// defaultWorkers is used. Each bootstrap is bounded by timeout.
func NewBootstrapper(numWorkers int, timeout time.Duration, log zerolog.Logger) *Bootstrapper {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	b := &Bootstrapper{
		workers: make([]chan *Visitor, numWorkers),
		timeout: timeout,
		log:     log.With().Str("component", "bootstrapper").Logger(),
	}
	for i := range b.workers {
		b.workers[i] = make(chan *Visitor, channelBuffer)
	}
	return b
}

// Start launches the workers. They stop when ctx is cancelled.
func (b *Bootstrapper) Start(ctx context.Context) {
	for i, ch := range b.workers {
		go b.runWorker(ctx, i, ch)
	}
}

// Submit queues v for bootstrap. When its worker's queue is full the
// bootstrap runs on its own goroutine instead; a visitor is never left
// without one.
func (b *Bootstrapper) Submit(v *Visitor) {
	select {
	case b.workers[b.shardIndex(v.ID)] <- v:
	default:
		b.log.Warn().Str("visitor", v.ID).Msg("bootstrap queue full, running inline")
		go b.run(context.Background(), v)
	}
}

func (b *Bootstrapper) shardIndex(id string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % uint32(len(b.workers)))
}

func (b *Bootstrapper) runWorker(ctx context.Context, id int, ch <-chan *Visitor) {
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-ch:
			if !ok {
				return
			}
			b.log.Debug().Str("visitor", v.ID).Int("worker_id", id).Msg("bootstrapping visitor")
			b.run(ctx, v)
		}
	}
}

func (b *Bootstrapper) run(ctx context.Context, v *Visitor) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	v.Session.Bootstrap(ctx)
}
