// Package queue_publisher provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures without
// interrupting the main request flow.
package queue_publisher

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/parking-spot-reservation/internal/booking"
    q "github.com/iliyamo/parking-spot-reservation/internal/queue"
)

const notifyQueueName = "parking.notify"

// PublishNotification publishes a NotificationEvent to the
// "parking.notify" queue. The function attempts to be robust and to
// never panic; any error is logged and returned so the caller can
// choose to ignore it. Messages are marked as persistent.
func PublishNotification(ctx context.Context, event q.NotificationEvent) error {
    conn, err := amqp.Dial(q.BrokerURL())
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        notifyQueueName, // name
        true,            // durable
        false,           // autoDelete
        false,           // exclusive
        false,           // noWait
        nil,             // args
    ); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx,
        "",              // default exchange
        notifyQueueName, // routing key = queue name
        false,           // mandatory
        false,           // immediate
        pub,
    ); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }

    return nil
}

// QueueNotifier adapts PublishNotification to the engine's Notifier
// interface, flattening the outcome into a broker-friendly payload.
type QueueNotifier struct{}

func (QueueNotifier) Notify(ctx context.Context, n booking.Notification) error {
    return PublishNotification(ctx, q.NotificationEvent{
        UserID:      n.UserID,
        DisplayName: n.DisplayName,
        Date:        n.Date.Format("2006-01-02"),
        Kind:        string(n.Outcome.Kind),
        Spot:        n.Outcome.Spot,
        Position:    n.Outcome.Position,
        Reason:      string(n.Outcome.Reason),
        Text:        n.Text,
        SentAt:      time.Now().UTC().Format(time.RFC3339),
    })
}
