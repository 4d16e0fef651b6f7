package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DispatcherConfig holds configuration options for the reminder worker pool
type DispatcherConfig struct {
	// Workers is the number of concurrent delivery goroutines.
	// If zero or negative, defaults to 1
	Workers int

	// QueueSize bounds pending reminders; Schedule drops when full.
	QueueSize int

	// SendTimeout limits a single delivery attempt.
	SendTimeout time.Duration
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Workers:     2,
		QueueSize:   100,
		SendTimeout: 10 * time.Second,
	}
}

// Dispatcher fans reminders out to every configured sender on a pool of workers.
type Dispatcher struct {
	senders []Sender
	queue   chan Reminder
	workers int
	timeout time.Duration
	logger  *slog.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewDispatcher creates a dispatcher. Call Start before scheduling.
func NewDispatcher(cfg DispatcherConfig, logger *slog.Logger, senders ...Sender) *Dispatcher {
	defaults := DefaultDispatcherConfig()
	if cfg.Workers <= 0 {
		logger.Warn("invalid reminder worker count, using default",
			"specified_count", cfg.Workers,
			"default_count", 1)
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaults.SendTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		senders: senders,
		queue:   make(chan Reminder, cfg.QueueSize),
		workers: cfg.Workers,
		timeout: cfg.SendTimeout,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	d.logger.Info("starting reminder dispatcher",
		"workers", d.workers,
		"senders", len(d.senders))

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

// Schedule queues a reminder without blocking. It reports whether the
// reminder was accepted.
func (d *Dispatcher) Schedule(r Reminder) bool {
	if d.ctx.Err() != nil {
		d.logger.Warn("reminder dropped, dispatcher stopped", "task_title", r.TaskTitle)
		return false
	}
	select {
	case d.queue <- r:
		return true
	default:
		d.logger.Warn("reminder dropped, queue full", "task_title", r.TaskTitle)
		return false
	}
}

// Stop signals workers to finish and waits for them. Pending reminders are
// delivered before the workers exit.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		d.cancel()
		d.wg.Wait()
		d.logger.Info("reminder dispatcher stopped")
	})
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	log := d.logger.With("worker_id", id)

	for {
		select {
		case r := <-d.queue:
			d.deliver(log, r)
		case <-d.ctx.Done():
			for {
				select {
				case r := <-d.queue:
					d.deliver(log, r)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(log *slog.Logger, r Reminder) {
	for _, s := range d.senders {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := s.Send(ctx, r)
		cancel()

		switch {
		case err == nil:
			log.Info("reminder sent", "channel", s.Channel(), "task_title", r.TaskTitle)
		case errors.Is(err, ErrNoRecipient):
			log.Info("reminder skipped, no recipient", "channel", s.Channel(), "task_title", r.TaskTitle)
		default:
			log.Error("reminder delivery failed",
				"channel", s.Channel(),
				"task_title", r.TaskTitle,
				"error", err)
		}
	}
}
