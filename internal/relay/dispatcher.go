package relay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/compose-network/crossdeploy/internal/logger"
)

type (
	relayer interface {
		Relay(ctx context.Context, ciphertext []byte) error
	}

	// Result is the outcome of one background relay.
	Result struct {
		Label    string
		Size     int
		Duration time.Duration
		Err      error
	}

	// Dispatcher runs relays in the background so the pipeline never waits on
	// them. Failures are logged and collected, never returned to the caller of Go.
	Dispatcher struct {
		ctx     context.Context
		relayer relayer
		logger  *slog.Logger

		mu      sync.Mutex
		closed  bool
		wg      sync.WaitGroup
		results chan Result
		done    chan struct{}

		collected []Result
	}
)

func NewDispatcher(ctx context.Context, r relayer) *Dispatcher {
	d := &Dispatcher{
		ctx:     ctx,
		relayer: r,
		logger:  logger.Named("relay_dispatcher"),
		results: make(chan Result),
		done:    make(chan struct{}),
	}
	go d.collect()
	return d
}

// Go relays ciphertext in the background. Calls after Close are dropped.
func (d *Dispatcher) Go(label string, ciphertext []byte) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.With("label", label).Warn("dispatcher closed, relay dropped")
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	payload := append([]byte(nil), ciphertext...)
	go func() {
		defer d.wg.Done()

		start := time.Now()
		err := d.relayer.Relay(d.ctx, payload)
		result := Result{
			Label:    label,
			Size:     len(payload),
			Duration: time.Since(start),
			Err:      err,
		}

		log := d.logger.With("label", label).With("duration", result.Duration)
		if err != nil {
			log.With("err", err.Error()).Warn("relay failed")
		} else {
			log.Info("ciphertext relayed")
		}

		d.results <- result
	}()
}

func (d *Dispatcher) collect() {
	for r := range d.results {
		d.collected = append(d.collected, r)
	}
	close(d.done)
}

// Close waits for in-flight relays and returns every result in completion order.
func (d *Dispatcher) Close() []Result {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		d.mu.Unlock()
		d.wg.Wait()
		close(d.results)
	} else {
		d.mu.Unlock()
	}

	<-d.done
	return d.collected
}
