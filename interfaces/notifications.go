package interfaces

import "context"

// NotificationService informs the submitter that a receipt finished
// processing. Failures are logged by callers and never fatal.
type NotificationService interface {
	SendReceiptProcessed(ctx context.Context, toAddress, receiptID, filename string) error
}
