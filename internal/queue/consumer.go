package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// LogFileName is the audit log written inside the consumer's directory.
const LogFileName = "booking.log"

// StartBookingConsumer connects to RabbitMQ, declares QueueName and appends
// every event to <logDir>/booking.log.  It reconnects with exponential
// backoff and returns only when ctx is cancelled.  Malformed messages are
// rejected without requeue.
func StartBookingConsumer(ctx context.Context, url, logDir string, log *zap.Logger) error {
    if log == nil {
        log = zap.NewNop()
    }
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Warn("booking consumer dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            backoff = min(backoff*2, 30*time.Second)
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, logDir, log)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Warn("booking consumer loop ended, reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
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

func consumeLoop(ctx context.Context, conn *amqp.Connection, logDir string, log *zap.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warn("booking consumer qos failed", zap.Error(err))
    }
    if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.ConsumeWithContext(ctx, QueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }
    log.Info("booking consumer started", zap.String("queue", QueueName), zap.String("log_dir", logDir))

    for d := range msgs {
        if err := handleMessage(d.Body, logDir); err != nil {
            log.Error("booking event rejected", zap.Error(err))
            _ = d.Nack(false, false)
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, logDir string) error {
    var ev BookingEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" {
        return errors.New("event without type")
    }
    if err := os.MkdirAll(logDir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", logDir, err)
    }
    f, err := os.OpenFile(filepath.Join(logDir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(formatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// formatLine renders one human-readable audit line, newline included.
func formatLine(ev BookingEvent) string {
    ts := ev.OccurredAt.UTC().Format(time.RFC3339)
    switch ev.Type {
    case EventOccupancyReset, EventOccupancyRandomized:
        return fmt.Sprintf("[%s] %s | rooms=%d | bookings=%d\n", ts, ev.Type, ev.RoomsAffected, ev.BookingsAffected)
    }
    rooms := make([]string, len(ev.Rooms))
    for i, n := range ev.Rooms {
        rooms[i] = fmt.Sprint(n)
    }
    return fmt.Sprintf("[%s] %s | booking_id=%s | guest_id=%d | stay=%s..%s | rooms=[%s] | travel=%dmin | placement=%s\n",
        ts, ev.Type, ev.BookingID, ev.GuestID, ev.CheckIn, ev.CheckOut, strings.Join(rooms, ","), ev.TravelTimeMinutes, ev.Placement)
}
