package interfaces

import (
	"context"

	"github.com/NazarSenchuk/receipt-processor/internal/models"
)

// ExtractionService sends one image to the vision model and parses a
// structured result out of the response. A nil result with a non-nil error
// means extraction failed for that image; the error is diagnostic and must
// not abort the caller's batch.
type ExtractionService interface {
	ExtractReceipt(ctx context.Context, image []byte) (*models.ReceiptFields, error)
}
