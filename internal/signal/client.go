package signal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/j-veylop/calendar-widget-tui/internal/logger"
)

const (
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
)

type client struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

func dial(url, exchange string) (*client, error) {
	if url == "" {
		return nil, errors.New("AMQP URL is empty")
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	c := &client{conn: conn, channel: channel, exchange: exchange}

	err = c.channel.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return c, nil
}

// Close closes the channel and the connection.
func (c *client) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Publisher announces rewritten documents.
type Publisher struct {
	*client
}

// NewPublisher connects to url and declares the fanout exchange.
func NewPublisher(url, exchange string) (*Publisher, error) {
	c, err := dial(url, exchange)
	if err != nil {
		return nil, err
	}
	return &Publisher{client: c}, nil
}

// Publish sends msg to every bound widget.
func (p *Publisher) Publish(ctx context.Context, msg *Message) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange, // exchange
		"",         // routing key, ignored by fanout
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Type:        msg.Kind,
			Timestamp:   msg.WrittenAt,
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	logger.Info("published refresh signal", "exchange", p.exchange, "entries", msg.Entries)
	return nil
}

// Handler processes one received message.
type Handler func(*Message) error

// Subscriber receives refresh signals on a private queue.
type Subscriber struct {
	*client
	queue string
}

// NewSubscriber connects to url and binds an exclusive, auto-deleted queue
// to the exchange.
func NewSubscriber(url, exchange string) (*Subscriber, error) {
	c, err := dial(url, exchange)
	if err != nil {
		return nil, err
	}

	q, err := c.channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := c.channel.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &Subscriber{client: c, queue: q.Name}, nil
}

// Consume delivers messages to handler until ctx is done or the connection
// drops.
func (s *Subscriber) Consume(ctx context.Context, handler Handler) error {
	msgs, err := s.channel.Consume(
		s.queue, // queue
		"",      // consumer
		false,   // auto-ack
		true,    // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	logger.Debug("consuming refresh signals", "queue", s.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			var ackErr error
			switch handleBody(delivery.Body, handler) {
			case outcomeAck:
				ackErr = delivery.Ack(false)
			case outcomeReject:
				ackErr = delivery.Nack(false, false)
			case outcomeRequeue:
				ackErr = delivery.Nack(false, true)
			}
			if ackErr != nil {
				logger.Warn("failed to acknowledge refresh signal", "error", ackErr)
			}
		}
	}
}

type outcome int

const (
	outcomeAck outcome = iota
	outcomeReject
	outcomeRequeue
)

func handleBody(body []byte, handler Handler) outcome {
	msg, err := MessageFromJSON(body)
	if err != nil {
		logger.Warn("dropping refresh signal", "error", err)
		return outcomeReject
	}
	if err := handler(msg); err != nil {
		logger.Error("failed to handle refresh signal", "error", err)
		return outcomeRequeue
	}
	return outcomeAck
}

// Listen subscribes and consumes until ctx is done, reconnecting with
// exponential backoff when the broker goes away.
func Listen(ctx context.Context, url, exchange string, handler Handler) {
	for attempt := 0; ; attempt++ {
		sub, err := NewSubscriber(url, exchange)
		if err == nil {
			attempt = 0
			err = sub.Consume(ctx, handler)
			_ = sub.Close()
		}
		if ctx.Err() != nil {
			return
		}

		wait := exponentialBackoff(attempt)
		logger.Warn("refresh signal subscription lost", "error", err, "retry_in", wait)

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// exponentialBackoff returns 1s, 2s, 4s ... capped at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	return min(d, maxBackoff)
}
