package models

import (
	"fmt"
	"strings"
)

// Attachment is one extracted message part, already written to blob storage.
type Attachment struct {
	Filename    string `json:"filename"`
	S3Key       string `json:"s3_key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

// Manifest is the per-message side record describing every extracted
// attachment. Written once by the intake service, read-only afterwards.
type Manifest struct {
	MessageID   string       `json:"message_id"`
	From        []string     `json:"from"`
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	Timestamp   string       `json:"timestamp"`
	Attachments []Attachment `json:"attachments"`
	FileCount   int          `json:"file_count"`
	HasImages   bool         `json:"has_images"`
}

// Storage keys are deterministic so that redelivered messages overwrite
// instead of duplicating.

func AttachmentKey(messageID, filename string) string {
	return fmt.Sprintf("injected/%s/files/%s", messageID, filename)
}

func ManifestKey(messageID string) string {
	return fmt.Sprintf("injected/%s/metadata.json", messageID)
}
