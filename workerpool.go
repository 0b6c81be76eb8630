package reddit

import (
	"context"
	"sync"
	"time"

	"github.com/gammazero/channelqueue"
)

// workerPool executes all background work — per-sort-order fetches and
// asynchronous snapshot writes — on a fixed number of goroutines. Submitted
// tasks buffer without blocking the submitter.
//
// The pool is process-wide state: constructed once, stopped once.
type workerPool struct {
	tasks  *channelqueue.ChannelQueue[func(context.Context)]
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger Logger

	mu      sync.RWMutex
	stopped bool
}

func newWorkerPool(workers int, logger Logger) *workerPool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &workerPool{
		tasks:  channelqueue.New[func(context.Context)](-1),
		ctx:    ctx,
		cancel: cancel,
		logger: logger.Named("workers"),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *workerPool) run() {
	defer p.wg.Done()
	for task := range p.tasks.Out() {
		p.exec(task)
	}
}

func (p *workerPool) exec(task func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic in background task", Any("panic", r))
		}
	}()
	task(p.ctx)
}

// Submit queues a task for execution. Returns false once the pool has been
// stopped; the task is then dropped, which is acceptable for the write-
// behind work this pool carries.
func (p *workerPool) Submit(task func(context.Context)) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}
	p.tasks.In() <- task
	return true
}

// Stop shuts the pool down in two phases: stop intake and wait up to
// drainGrace for queued work to finish, then force-cancel the task context
// and wait at most killGrace more. Tasks still running after that are
// abandoned.
func (p *workerPool) Stop(drainGrace, killGrace time.Duration) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.tasks.Close()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(drainGrace):
		p.logger.Warn("background work did not drain in time, cancelling",
			Duration("grace", drainGrace))
		p.cancel()
		select {
		case <-done:
		case <-time.After(killGrace):
			p.logger.Error("background tasks still running after forced cancellation")
		}
	}
	p.cancel()
}
