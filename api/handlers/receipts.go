package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NazarSenchuk/receipt-processor/api/middleware"
	"github.com/NazarSenchuk/receipt-processor/interfaces"
	"github.com/NazarSenchuk/receipt-processor/internal/tracing"
)

// ListReceipts returns every receipt record for the resolved sender
// identity, newest first. Zero matches is 404, a missing identity is 400,
// a store failure is 500; all responses carry a structured JSON body.
func ListReceipts(receiptRepository interfaces.ReceiptRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ListReceipts", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		email := middleware.ResolveEmail(c)
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Email is required or user must be authenticated",
			})
			return
		}
		tracing.TagSenderEmail(span, email)

		records, err := receiptRepository.GetBySender(ctx, email)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Database error",
				"details": err.Error(),
			})
			return
		}

		if len(records) == 0 {
			c.JSON(http.StatusNotFound, gin.H{
				"message": fmt.Sprintf("No receipts found for email: %s", email),
				"count":   0,
				"items":   []interface{}{},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Receipts retrieved successfully",
			"count":   len(records),
			"items":   records,
		})
	}
}
