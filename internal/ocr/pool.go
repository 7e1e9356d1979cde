package ocr

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/mgaillard/scandoc/internal/common"
)

const (
	DefaultMaxWorkers    = 3
	DefaultRetryAttempts = 2
	DefaultRetryBaseWait = 500 * time.Millisecond
)

// Pool manages a bounded set of shared OCR engines. Instances are created
// lazily up to the cap; once saturated, a random member is returned. Members
// are shared across in-flight calls, there is no exclusive lease. Concurrent
// acquires racing past the capacity check may transiently create surplus
// engines, but those are closed rather than pooled, so the pool never grows
// past the cap.
type Pool struct {
	factory  Factory
	max      int
	attempts uint
	baseWait time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	engines []Engine
}

type PoolOption func(*Pool)

func WithMaxWorkers(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.max = n
		}
	}
}

func WithRetryAttempts(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.attempts = uint(n)
		}
	}
}

func WithRetryBaseWait(d time.Duration) PoolOption {
	return func(p *Pool) {
		if d > 0 {
			p.baseWait = d
		}
	}
}

func NewPool(factory Factory, logger *slog.Logger, opts ...PoolOption) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		factory:  factory,
		max:      DefaultMaxWorkers,
		attempts: DefaultRetryAttempts,
		baseWait: DefaultRetryBaseWait,
		logger:   logger,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// acquire returns a pooled engine, creating one while below the cap.
// Creation happens outside the lock, so concurrent acquires may build
// surplus engines; the re-check on append closes those instead of pooling
// them, keeping the pool itself at the cap.
func (p *Pool) acquire() (Engine, error) {
	p.mu.Lock()
	if len(p.engines) >= p.max {
		eng := p.engines[rand.IntN(len(p.engines))]
		p.mu.Unlock()
		return eng, nil
	}
	p.mu.Unlock()

	eng, err := p.factory()
	if err != nil {
		return nil, common.NewEngineError("create ocr engine", err)
	}

	p.mu.Lock()
	if len(p.engines) >= p.max {
		// lost the creation race; fold back to an existing member
		existing := p.engines[rand.IntN(len(p.engines))]
		p.mu.Unlock()
		if cerr := eng.Close(); cerr != nil {
			p.logger.Error("close surplus ocr engine", "error", cerr)
		}
		return existing, nil
	}
	p.engines = append(p.engines, eng)
	size := len(p.engines)
	p.mu.Unlock()

	p.logger.Debug("ocr engine added to pool", "pool_size", size)
	return eng, nil
}

// Size reports the current number of pooled engines.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.engines)
}

// Recognize OCRs the file at path, retrying engine failures with linear
// backoff (attempt index times the base wait). A missing file is terminal
// and reported before any engine is invoked.
func (p *Pool) Recognize(ctx context.Context, path string) (Result, error) {
	if _, err := os.Stat(path); err != nil {
		return Result{}, common.NewInputError("file not found: "+path, err)
	}

	eng, err := p.acquire()
	if err != nil {
		return Result{}, err
	}

	var res Result
	err = retry.Do(
		func() error {
			var rerr error
			res, rerr = eng.Recognize(ctx, path)
			return rerr
		},
		retry.Attempts(p.attempts),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return time.Duration(n+1) * p.baseWait
		}),
		retry.OnRetry(func(n uint, err error) {
			p.logger.Warn("ocr recognize retry", "attempt", n+1, "path", path, "error", err)
		}),
	)
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// Shutdown closes every pooled engine and empties the pool. Idempotent and
// safe on an empty pool; in-flight recognitions are not cancelled.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	engines := p.engines
	p.engines = nil
	p.mu.Unlock()

	for _, eng := range engines {
		if err := eng.Close(); err != nil {
			p.logger.Error("close ocr engine", "error", err)
		}
	}
	if len(engines) > 0 {
		p.logger.Info("ocr pool shut down", "closed", len(engines))
	}
}
