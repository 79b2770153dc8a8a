package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/NazarSenchuk/receipt-processor/interfaces"
	"github.com/NazarSenchuk/receipt-processor/internal/logger"
	"github.com/NazarSenchuk/receipt-processor/internal/tracing"
)

const (
	defaultMaxMessages     = 10
	receiveErrorBackoff    = 5 * time.Second
	maxReceiveErrorBackoff = 30 * time.Second
)

// Handler processes one delivery. A nil return acknowledges the message; an
// error leaves it on the queue for redelivery.
type Handler func(ctx context.Context, message interfaces.QueueMessage) error

// Consumer long-polls one queue and feeds deliveries to its handler, one at
// a time. Horizontal scale comes from running more processes, not from
// fanning out inside one consumer.
type Consumer struct {
	name     string
	queueURL string
	queue    interfaces.QueueService
	handler  Handler
	logger   logger.Logger
}

func NewConsumer(name, queueURL string, queueService interfaces.QueueService, handler Handler, log logger.Logger) *Consumer {
	return &Consumer{
		name:     name,
		queueURL: queueURL,
		queue:    queueService,
		handler:  handler,
		logger:   log,
	}
}

// Start blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	c.logger.Infof("Listening for messages on queue %s", c.queueURL)
	backoff := receiveErrorBackoff

	for {
		select {
		case <-ctx.Done():
			c.logger.Infof("Consumer %s stopped", c.name)
			return
		default:
		}

		messages, err := c.queue.ReceiveMessages(ctx, c.queueURL, defaultMaxMessages)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Errorf("Failed to receive messages on queue %s: %v. Retrying in %v", c.queueURL, err, backoff)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > maxReceiveErrorBackoff {
				backoff = maxReceiveErrorBackoff
			}
			continue
		}
		backoff = receiveErrorBackoff

		for _, message := range messages {
			c.handleMessage(ctx, message)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, message interfaces.QueueMessage) {
	invocationID := uuid.NewString()

	msgCtx, span := tracing.StartQueueMessageTracerSpan(ctx, "Consumer."+c.name, message.Attributes["uber-trace-id"])
	defer span.Finish()
	tracing.SetDefaultConsumerSpanTags(msgCtx, span)
	span.LogKV("queue", c.queueURL, "invocationId", invocationID, "deliveryId", message.ID)

	err := c.handler(msgCtx, message)
	if err != nil {
		// leave the delivery in place; the queue's redrive policy retries it
		tracing.TraceErr(span, err)
		c.logger.Errorf("Handler %s failed for delivery %s (invocation %s): %v", c.name, message.ID, invocationID, err)
		return
	}

	err = c.queue.DeleteMessage(msgCtx, c.queueURL, message.ReceiptHandle)
	if err != nil {
		// redelivery of an already-processed message is safe: every write
		// downstream is idempotent on deterministic keys
		tracing.TraceErr(span, err)
		c.logger.Warnf("Failed to delete delivery %s on queue %s: %v", message.ID, c.queueURL, err)
	}
}
