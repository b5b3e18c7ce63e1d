// Package workers runs the background loops of the server under a restarting supervisor.
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const waitTimeBeforeRestart = 200 * time.Millisecond

// Worker is a long running loop. Returning nil ends it for good, returning an error or panicking restarts it.
type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

type funcWorker struct {
	name string
	run  func(ctx context.Context) error
}

// NewWorker adapts a function to a Worker.
func NewWorker(name string, run func(ctx context.Context) error) Worker {
	return funcWorker{name: name, run: run}
}

func (w funcWorker) Name() string                  { return w.name }
func (w funcWorker) Run(ctx context.Context) error { return w.run(ctx) }

// Supervisor owns the workers and restarts the ones that crash until its context ends.
type Supervisor struct {
	cancel  context.CancelFunc
	mu      sync.Mutex
	wg      sync.WaitGroup
	log     *slog.Logger
	workers []Worker
	restart time.Duration
}

func NewSupervisor(log *slog.Logger) *Supervisor {
	return &Supervisor{log: log, restart: waitTimeBeforeRestart}
}

func (s *Supervisor) Add(worker ...Worker) *Supervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Run starts every worker and blocks until all of them returned.
// Cancelling ctx or calling Stop ends them.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	for _, worker := range s.workers {
		s.start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

func (s *Supervisor) start(ctx context.Context, worker Worker) {
	s.wg.Add(1)
	name := worker.Name()

	go func() {
		defer s.wg.Done()
		for {
			if ctx.Err() != nil {
				s.log.Debug("Worker stopping", "name", name)
				return
			}

			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("worker panicked: %v", r)
					}
				}()
				return worker.Run(ctx)
			}()

			if err == nil {
				s.log.Debug("Worker finished", "name", name)
				return
			}
			if ctx.Err() != nil {
				s.log.Debug("Worker stopped (context canceled)", "name", name)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", name, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.restart):
			}
		}
	}()
}

// Stop cancels the workers. Run returns once they are all gone.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
