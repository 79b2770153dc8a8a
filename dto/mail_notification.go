package dto

import (
	apperrors "github.com/NazarSenchuk/receipt-processor/internal/errors"
)

// MailNotification is the inbound trigger payload: one queued notification
// per received message, in the mail-receiving service's JSON shape.
type MailNotification struct {
	Mail    NotificationMail    `json:"mail"`
	Receipt NotificationReceipt `json:"receipt"`
}

type NotificationMail struct {
	MessageID     string        `json:"messageId"`
	Timestamp     string        `json:"timestamp"`
	CommonHeaders CommonHeaders `json:"commonHeaders"`
}

type CommonHeaders struct {
	From    []string `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
}

type NotificationReceipt struct {
	Action ReceiptAction `json:"action"`
}

type ReceiptAction struct {
	// ObjectKey locates the raw message in blob storage.
	ObjectKey string `json:"objectKey"`
}

func (n MailNotification) Validate() error {
	if n.Mail.MessageID == "" {
		return apperrors.ErrMissingMessageID
	}
	if n.Receipt.Action.ObjectKey == "" {
		return apperrors.ErrMissingObjectKey
	}
	return nil
}
