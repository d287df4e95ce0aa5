package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/devagency/agency-api/internal/api/metrics"
	"github.com/devagency/agency-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
	sendTimeout    = 30 * time.Second
)

// Dispatcher routes outgoing mail to a fixed set of workers using consistent
// hashing on the recipient, so messages to one address are delivered in order.
type Dispatcher struct {
	workers []chan ports.MailMessage
	mailer  ports.Mailer
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.MailQueue = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, mailer ports.Mailer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.MailMessage, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.MailMessage, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// delivers what is already buffered for it and then returns.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands msg to the worker responsible for its recipient. It never
// blocks: when that worker's buffer is full the message is dropped and
// Enqueue returns false.
func (d *Dispatcher) Enqueue(msg ports.MailMessage) bool {
	idx := d.shardIndex(msg.To)
	select {
	case d.workers[idx] <- msg:
		metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return true
	default:
		metrics.MailMessagesTotal.WithLabelValues("dropped").Inc()
		d.log.Error().
			Str("to", msg.To).
			Str("subject", msg.Subject).
			Int("worker_id", idx).
			Msg("mail queue full, message dropped")
		return false
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(recipient)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.MailMessage) {
	defer d.wg.Done()
	depth := metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch, depth)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			d.deliver(id, msg)
		}
	}
}

// drain delivers whatever is left in ch without waiting for more.
func (d *Dispatcher) drain(id int, ch <-chan ports.MailMessage, depth prometheus.Gauge) {
	drained := 0
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			d.deliver(id, msg)
			drained++
		default:
			if drained > 0 {
				d.log.Info().Int("worker_id", id).Int("messages", drained).Msg("mail queue drained")
			}
			return
		}
	}
}

// deliver sends with its own deadline so a shutdown does not abort a send
// that is already in flight.
func (d *Dispatcher) deliver(id int, msg ports.MailMessage) {
	sendCtx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	start := time.Now()
	err := d.mailer.Send(sendCtx, msg)
	metrics.MailDeliveryDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.MailMessagesTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("to", msg.To).
			Str("subject", msg.Subject).
			Int("worker_id", id).
			Msg("mail delivery failed")
		return
	}
	metrics.MailMessagesTotal.WithLabelValues("sent").Inc()
}
