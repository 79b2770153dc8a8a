package interfaces

import "context"

// IntakeService handles one inbound mail notification: attachment
// extraction, manifest write, and the dispatch decision.
type IntakeService interface {
	ProcessNotification(ctx context.Context, message QueueMessage) error
}

// ReceiptProcessorService handles one work descriptor: runs every image
// attachment of the referenced manifest through extraction and persistence.
type ReceiptProcessorService interface {
	ProcessJob(ctx context.Context, message QueueMessage) error
}
