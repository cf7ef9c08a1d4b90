package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"vanta/internal/log"
)

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	maxBackoff     = 30 * time.Second
	publishTimeout = 5 * time.Second
)

// Client publishes and consumes change events on a durable direct exchange.
// The connection is re-established lazily after a broker failure; repeated
// failures open a circuit breaker so publishers fail fast.
type Client struct {
	url          string
	exchangeName string
	queueName    string
	logger       *log.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	failureCount int64
	state        int32
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Nop()
	}
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger.WithComponent(log.ComponentAMQP),
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

// ConnectWithRetry dials until it succeeds, ctx ends or attempts run out.
func ConnectWithRetry(ctx context.Context, url, exchangeName, queueName string, attempts int, logger *log.Logger) (*Client, error) {
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		c, err := NewClient(url, exchangeName, queueName, logger)
		if err == nil {
			return c, nil
		}
		lastErr = err
		wait := exponentialBackoff(attempt)
		if logger != nil {
			logger.WarnContext(ctx, "AMQP connect failed, retrying", "attempt", attempt+1, "wait", wait, log.FieldError, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("connect AMQP after %d attempts: %w", attempts, lastErr)
}

func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := declare(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	c.conn, c.channel = conn, channel
	return nil
}

func declare(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// routing key is the queue name on a direct exchange
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (c *Client) openChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn, c.channel = nil, nil
	}
	if err := c.connectLocked(); err != nil {
		return nil, err
	}
	return c.channel, nil
}

// PublishChange publishes ev as a persistent JSON message.
func (c *Client) PublishChange(ctx context.Context, ev ChangeEvent) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("circuit breaker is open, skipping publish of %s %d", ev.Resource, ev.ID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch, err := c.openChannel()
	if err != nil {
		c.recordFailure()
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx, c.exchangeName, c.queueName, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    ev.Timestamp,
		Type:         string(ev.Action),
		Body:         body,
	})
	if err != nil {
		if isConnectionError(err) {
			c.recordFailure()
		}
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	c.logger.DebugContext(ctx, "Published change event",
		log.FieldResource, ev.Resource,
		log.FieldRecordID, ev.ID,
		"action", ev.Action)
	return nil
}

// Acknowledger is the part of a delivery the consumer settles.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// ConsumeChanges delivers events to handler until ctx ends. Malformed bodies
// are dropped; handler failures are requeued.
func (c *Client) ConsumeChanges(ctx context.Context, handler func(context.Context, ChangeEvent) error) error {
	ch, err := c.openChannel()
	if err != nil {
		return err
	}
	msgs, err := ch.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming change events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			c.Handle(ctx, d.Body, d, handler)
		}
	}
}

// Handle decodes one delivery, runs handler and settles it.
func (c *Client) Handle(ctx context.Context, body []byte, ack Acknowledger, handler func(context.Context, ChangeEvent) error) {
	ev, err := ChangeEventFromJSON(body)
	if err != nil {
		c.logger.ErrorContext(ctx, "Dropping malformed message", log.FieldError, err)
		ack.Nack(false, false)
		return
	}
	if err := handler(ctx, ev); err != nil {
		c.logger.ErrorContext(ctx, "Failed to handle change event",
			log.FieldError, err,
			log.FieldResource, ev.Resource,
			log.FieldRecordID, ev.ID)
		ack.Nack(false, true)
		return
	}
	ack.Ack(false)
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	n := atomic.AddInt64(&c.failureCount, 1)
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if n >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	return min(time.Second<<attempt, maxBackoff)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{"connection", "EOF", "broken pipe", "closed network"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
