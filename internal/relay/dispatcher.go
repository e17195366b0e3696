// Package relay queues pushes from the HTTP facade and delivers them to
// PushBullet in the background.
package relay

import (
	"context"
	"errors"
	"sync"

	pushbullet "github.com/ochronus/gopushbullet"
	"github.com/ochronus/gopushbullet/internal/app"
	"github.com/sirupsen/logrus"
)

// ErrQueueFull is returned by Enqueue when the job queue is at capacity.
var ErrQueueFull = errors.New("relay queue is full")

// Job is a single push waiting to be delivered.
type Job struct {
	Target pushbullet.PushTarget
	Data   pushbullet.PushData
}

// Dispatcher fans queued jobs out to a fixed pool of workers, each of which
// delivers pushes through the PushBullet client. Delivery failures are
// logged, not propagated: the submitting request has already been answered.
type Dispatcher struct {
	client  pushbullet.ClientAPI
	logger  *logrus.Logger
	jobs    chan Job
	workers int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a new dispatcher from the container's client, logger
// and configured worker/queue sizes.
func NewDispatcher(container *app.Container) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		client:  container.Client,
		logger:  container.Logger,
		jobs:    make(chan Job, container.Config.QueueSize),
		workers: container.Config.RelayWorkers,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins delivering jobs with a background context.
func (d *Dispatcher) Start() error {
	return d.StartWithContext(context.Background())
}

// StartWithContext begins delivering jobs using the provided parent context.
func (d *Dispatcher) StartWithContext(ctx context.Context) error {
	// derive a cancellable context from the provided parent
	d.ctx, d.cancel = context.WithCancel(ctx)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	return nil
}

// Stop signals all workers to exit and waits for them to finish. Jobs still
// queued at that point are dropped.
func (d *Dispatcher) Stop() {
	d.cancel()
	d.wg.Wait()

	if dropped := len(d.jobs); dropped > 0 {
		d.logger.Warnf("relay stopped with %d undelivered pushes", dropped)
	}
}

// Enqueue submits a job for delivery without blocking.
func (d *Dispatcher) Enqueue(job Job) error {
	select {
	case d.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		case job := <-d.jobs:
			if err := d.client.Push(d.ctx, job.Target, job.Data); err != nil {
				d.logger.Errorf("relay worker %d: push failed: %v", id, err)
				continue
			}
			d.logger.Debugf("relay worker %d: push delivered", id)
		}
	}
}
