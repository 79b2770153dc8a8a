package models

import (
	"fmt"

	"github.com/NazarSenchuk/receipt-processor/internal/enum"
)

// ReceiptFields holds the structured data extracted from one receipt image.
// Every field is optional since the model routinely returns partial results.
type ReceiptFields struct {
	MerchantName  *string  `json:"merchant_name,omitempty" dynamodbav:"merchant_name,omitempty"`
	Date          *string  `json:"date,omitempty" dynamodbav:"date,omitempty"`
	Time          *string  `json:"time,omitempty" dynamodbav:"time,omitempty"`
	TotalAmount   *Decimal `json:"total_amount,omitempty" dynamodbav:"total_amount,omitempty"`
	Currency      *string  `json:"currency,omitempty" dynamodbav:"currency,omitempty"`
	PaymentMethod *string  `json:"payment_method,omitempty" dynamodbav:"payment_method,omitempty"`
}

// ReceiptFieldsFromMap maps a normalized extraction payload (see
// NormalizeNumbers) into the typed field set. Unknown keys are dropped,
// missing keys stay nil.
func ReceiptFieldsFromMap(payload map[string]interface{}) *ReceiptFields {
	fields := &ReceiptFields{
		MerchantName:  stringField(payload, "merchant_name"),
		Date:          stringField(payload, "date"),
		Time:          stringField(payload, "time"),
		TotalAmount:   decimalField(payload, "total_amount"),
		Currency:      stringField(payload, "currency"),
		PaymentMethod: stringField(payload, "payment_method"),
	}
	return fields
}

func stringField(payload map[string]interface{}, key string) *string {
	value, ok := payload[key]
	if !ok || value == nil {
		return nil
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func decimalField(payload map[string]interface{}, key string) *Decimal {
	value, ok := payload[key]
	if !ok || value == nil {
		return nil
	}
	switch v := value.(type) {
	case Decimal:
		return &v
	case string:
		// models sometimes quote amounts
		d := Decimal(v)
		if _, err := d.Float64(); err != nil {
			return nil
		}
		return &d
	default:
		return nil
	}
}

// ReceiptRecord is the durable per-(message, file) processing result.
type ReceiptRecord struct {
	ReceiptID     string             `json:"receipt_id" dynamodbav:"receipt_id"`
	MessageID     string             `json:"message_id" dynamodbav:"message_id"`
	Filename      string             `json:"filename" dynamodbav:"filename"`
	S3Key         string             `json:"s3_key" dynamodbav:"s3_key"`
	ContentType   string             `json:"content_type" dynamodbav:"content_type"`
	FileSize      int64              `json:"file_size" dynamodbav:"file_size"`
	EmailFromRaw  string             `json:"email_from_raw" dynamodbav:"email_from_raw"`
	EmailFrom     string             `json:"email_from" dynamodbav:"email_from"`
	EmailName     string             `json:"email_name" dynamodbav:"email_name"`
	EmailSubject  string             `json:"email_subject" dynamodbav:"email_subject"`
	ProcessedAt   string             `json:"processed_at" dynamodbav:"processed_at"`
	ReceiptData   *ReceiptFields     `json:"receipt_data,omitempty" dynamodbav:"receipt_data,omitempty"`
	Status        enum.ReceiptStatus `json:"status" dynamodbav:"status"`
	FailureReason string             `json:"failure_reason,omitempty" dynamodbav:"failure_reason,omitempty"`
}

// ReceiptID is deterministic: reprocessing the same (message, file) pair
// overwrites the previous record instead of duplicating it.
func BuildReceiptID(messageID, filename string) string {
	return fmt.Sprintf("%s_%s", messageID, filename)
}
