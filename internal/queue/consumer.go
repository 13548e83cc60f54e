package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// Consumer reads booking events and appends one line per event to the
// booking log file.
type Consumer struct {
    url   string
    queue string
    path  string
    log   *zap.Logger

    mu sync.Mutex // serializes file appends
}

// NewConsumer returns a consumer writing to path (logs/booking.log when empty).
func NewConsumer(url, path string, log *zap.Logger) *Consumer {
    if path == "" {
        path = filepath.Join("logs", "booking.log")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &Consumer{url: url, queue: BookingEventsQueue, path: path, log: log}
}

// Run consumes until ctx is cancelled, reconnecting with exponential
// backoff.  Malformed messages are rejected without requeue.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.url)
        if err != nil {
            c.log.Warn("booking consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            backoff = nextBackoff(backoff)
            continue
        }
        backoff = time.Second

        err = c.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.log.Warn("booking consumer: consume loop ended, reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.Warn("booking consumer: set QoS failed", zap.Error(err))
    }
    if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := c.Handle(d.Body); err != nil {
            c.log.Error("booking consumer: handle message failed", zap.String("message_id", d.MessageId), zap.Error(err))
            _ = d.Nack(false, false)
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

// Handle decodes one message body and appends it to the booking log.
func (c *Consumer) Handle(body []byte) error {
    var ev BookingEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" || ev.BookingID == 0 {
        return errors.New("event without type or booking id")
    }

    c.mu.Lock()
    defer c.mu.Unlock()
    if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(c.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders ev as a single booking log line.
func FormatLine(ev BookingEvent) string {
    line := fmt.Sprintf("[%s] %s | booking_id=%d | user_id=%d | venue_id=%d | date=%s | slot=%s-%s | booking=%s | payment=%s | amount=%.2f",
        ev.OccurredAt, ev.Type, ev.BookingID, ev.UserID, ev.VenueID, ev.BookingDate,
        ev.StartTime, ev.EndTime, ev.BookingStatus, ev.PaymentStatus, ev.Amount)
    if ev.CancelledBy != "" {
        line += " | cancelled_by=" + ev.CancelledBy
    }
    return line + "\n"
}
