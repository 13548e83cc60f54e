package queue

import (
    "context"
    "encoding/json"
    "errors"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// ErrPublisherFull is returned by Publish when the outbound buffer is
// full, typically because the broker has been unreachable for a while.
var ErrPublisherFull = errors.New("event buffer full")

// Publisher queues events in memory and ships them to RabbitMQ from a
// single background goroutine started with Run.  Publish never blocks on
// the network.
type Publisher struct {
    url   string
    queue string
    buf   chan BookingEvent
    log   *zap.Logger
}

// NewPublisher returns a publisher buffering up to size events.
func NewPublisher(url string, size int, log *zap.Logger) *Publisher {
    if size <= 0 {
        size = 1024
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &Publisher{url: url, queue: BookingEventsQueue, buf: make(chan BookingEvent, size), log: log}
}

// Publish enqueues ev.  It fails only when the buffer is full.
func (p *Publisher) Publish(_ context.Context, ev BookingEvent) error {
    select {
    case p.buf <- ev:
        return nil
    default:
        return ErrPublisherFull
    }
}

// Pending reports how many events wait to be shipped.
func (p *Publisher) Pending() int { return len(p.buf) }

// Run connects to the broker and ships buffered events until ctx is
// cancelled, reconnecting with exponential backoff.  An event whose
// publish fails is retried on the next connection.
func (p *Publisher) Run(ctx context.Context) error {
    var held *BookingEvent
    backoff := time.Second
    for {
        conn, err := amqp.Dial(p.url)
        if err != nil {
            p.log.Warn("event publisher: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            backoff = nextBackoff(backoff)
            continue
        }
        backoff = time.Second

        held, err = p.ship(ctx, conn, held)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        p.log.Warn("event publisher: connection lost", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

// ship publishes until the connection breaks or ctx ends.  It returns the
// event that could not be published, if any.
func (p *Publisher) ship(ctx context.Context, conn *amqp.Connection, held *BookingEvent) (*BookingEvent, error) {
    ch, err := conn.Channel()
    if err != nil {
        return held, err
    }
    defer func() { _ = ch.Close() }()
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        return held, err
    }

    for {
        var ev BookingEvent
        if held != nil {
            ev = *held
        } else {
            select {
            case <-ctx.Done():
                return nil, ctx.Err()
            case ev = <-p.buf:
            }
        }
        msg, err := encode(ev)
        if err != nil {
            p.log.Error("event publisher: dropping unencodable event", zap.String("event_id", ev.ID), zap.Error(err))
            held = nil
            continue
        }
        pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
        err = ch.PublishWithContext(pctx, "", p.queue, false, false, msg)
        cancel()
        if err != nil {
            return &ev, err
        }
        held = nil
    }
}

func encode(ev BookingEvent) (amqp.Publishing, error) {
    body, err := json.Marshal(ev)
    if err != nil {
        return amqp.Publishing{}, err
    }
    return amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.ID,
        Type:         ev.Type,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func nextBackoff(d time.Duration) time.Duration {
    if d *= 2; d > 30*time.Second {
        return 30 * time.Second
    }
    return d
}
