package interfaces

import (
	"context"

	"github.com/NazarSenchuk/receipt-processor/internal/models"
)

type ReceiptRepository interface {
	// Save writes the record under its deterministic receipt_id; a repeat
	// write for the same id overwrites.
	Save(ctx context.Context, record *models.ReceiptRecord) error
	// GetBySender returns all records for one sender address, newest first.
	GetBySender(ctx context.Context, emailFrom string) ([]models.ReceiptRecord, error)
}
