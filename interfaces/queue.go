package interfaces

import "context"

// QueueMessage is one delivery from the queue transport. Attributes carry
// transport-level string metadata such as the message_id fallback.
type QueueMessage struct {
	ID            string
	ReceiptHandle string
	Body          string
	Attributes    map[string]string
}

type QueueService interface {
	SendMessage(ctx context.Context, queueURL string, payload interface{}, attributes map[string]string) error
	ReceiveMessages(ctx context.Context, queueURL string, maxMessages int64) ([]QueueMessage, error)
	DeleteMessage(ctx context.Context, queueURL string, receiptHandle string) error
}
