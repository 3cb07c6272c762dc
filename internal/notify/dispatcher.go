package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
)

// Sender performs the actual delivery of one notification.
type Sender interface {
	SendOrderConfirmation(ctx context.Context, o *domain.Order) error
	SendDispatchNotice(ctx context.Context, o *domain.Order) error
}

const (
	kindConfirmation = "order_confirmation"
	kindDispatch     = "dispatch_notice"

	sendTimeout = 30 * time.Second
	queueSize   = 64
)

type job struct {
	kind  string
	order *domain.Order
}

// Dispatcher decouples notification delivery from request handling: sends run
// on a background worker, failures are logged and swallowed, and a full queue
// drops rather than blocks. An order never fails because mail did.
type Dispatcher struct {
	sender Sender
	jobs   chan job
	stop   chan struct{}
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender) *Dispatcher {
	d := &Dispatcher{
		sender: sender,
		jobs:   make(chan job, queueSize),
		stop:   make(chan struct{}),
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) OrderConfirmation(o *domain.Order) {
	d.enqueue(job{kind: kindConfirmation, order: o})
}

func (d *Dispatcher) DispatchNotice(o *domain.Order) {
	d.enqueue(job{kind: kindDispatch, order: o})
}

func (d *Dispatcher) enqueue(j job) {
	select {
	case d.jobs <- j:
	default:
		log.Printf("notification queue full, dropping %s for order %d", j.kind, j.order.ID)
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case j := <-d.jobs:
			d.send(j)
		case <-d.stop:
			// drain what is already queued before exiting
			for {
				select {
				case j := <-d.jobs:
					d.send(j)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) send(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	var err error
	switch j.kind {
	case kindConfirmation:
		err = d.sender.SendOrderConfirmation(ctx, j.order)
	case kindDispatch:
		err = d.sender.SendDispatchNotice(ctx, j.order)
	}
	if err != nil {
		log.Printf("failed to send %s for order %d: %v", j.kind, j.order.ID, err)
	}
}

// Close stops the worker after draining queued notifications.
func (d *Dispatcher) Close() error {
	close(d.stop)
	d.wg.Wait()
	return nil
}
