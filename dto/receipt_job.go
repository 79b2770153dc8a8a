package dto

// ReceiptJob is the work descriptor enqueued for messages that carry at
// least one image attachment. It references the manifest by message id and
// never carries file bytes.
type ReceiptJob struct {
	MessageID    string `json:"message_id"`
	FileCount    int    `json:"file_count"`
	HasImages    bool   `json:"has_images"`
	EmailFromRaw string `json:"email_from_raw"`
	EmailFrom    string `json:"email_from"`
	EmailName    string `json:"email_name"`
	EmailSubject string `json:"email_subject"`
}
