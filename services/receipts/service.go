package receipts

import (
	"context"
	"encoding/json"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/NazarSenchuk/receipt-processor/dto"
	"github.com/NazarSenchuk/receipt-processor/interfaces"
	"github.com/NazarSenchuk/receipt-processor/internal/enum"
	"github.com/NazarSenchuk/receipt-processor/internal/logger"
	"github.com/NazarSenchuk/receipt-processor/internal/models"
	"github.com/NazarSenchuk/receipt-processor/internal/tracing"
	"github.com/NazarSenchuk/receipt-processor/services/queue"
)

type receiptProcessor struct {
	storage       interfaces.StorageService
	extraction    interfaces.ExtractionService
	notifications interfaces.NotificationService
	repository    interfaces.ReceiptRepository
	logger        logger.Logger
}

func NewReceiptProcessor(
	storage interfaces.StorageService,
	extraction interfaces.ExtractionService,
	notifications interfaces.NotificationService,
	repository interfaces.ReceiptRepository,
	log logger.Logger,
) interfaces.ReceiptProcessorService {
	return &receiptProcessor{
		storage:       storage,
		extraction:    extraction,
		notifications: notifications,
		repository:    repository,
		logger:        log,
	}
}

// ProcessJob runs every image attachment of the referenced manifest through
// extraction and persistence. Failures local to one attachment never abort
// the rest of the batch; only a missing manifest is fatal, leaving the
// delivery in place for redrive.
func (p *receiptProcessor) ProcessJob(ctx context.Context, message interfaces.QueueMessage) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "receiptProcessor.ProcessJob")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	job, ok := p.decodeJob(message)
	if !ok {
		// nothing to re-locate the manifest with; drop the delivery
		p.logger.Warn("Work descriptor has no message id, skipping delivery")
		return nil
	}
	tracing.TagMessageId(span, job.MessageID)
	tracing.TagSenderEmail(span, job.EmailFrom)
	p.logger.Infof("Processing message %s (%d files, from %s)", job.MessageID, job.FileCount, job.EmailFrom)

	manifestData, err := p.storage.Download(ctx, models.ManifestKey(job.MessageID))
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "failed to load manifest for message %s", job.MessageID)
	}

	var manifest models.Manifest
	err = json.Unmarshal(manifestData, &manifest)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "failed to parse manifest for message %s", job.MessageID)
	}

	for _, attachment := range manifest.Attachments {
		if !attachment.IsImage() {
			p.logger.Infof("Skipping non-image file: %s", attachment.Filename)
			continue
		}
		p.processAttachment(ctx, job, attachment)
	}

	return nil
}

// decodeJob reads the work descriptor from the delivery body, falling back
// to the transport-level message_id attribute when the body is unusable.
func (p *receiptProcessor) decodeJob(message interfaces.QueueMessage) (dto.ReceiptJob, bool) {
	var job dto.ReceiptJob
	err := json.Unmarshal([]byte(message.Body), &job)
	if err != nil {
		p.logger.Warnf("Invalid work descriptor body: %v", err)
	}

	if job.MessageID == "" {
		job.MessageID = message.Attributes[queue.AttributeMessageID]
	}

	return job, job.MessageID != ""
}

// processAttachment writes exactly one receipt record for the (message,
// file) pair, processed or failed. The record id is deterministic, so a
// redelivered job overwrites rather than duplicates.
func (p *receiptProcessor) processAttachment(ctx context.Context, job dto.ReceiptJob, attachment models.Attachment) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "receiptProcessor.processAttachment")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	receiptID := models.BuildReceiptID(job.MessageID, attachment.Filename)
	tracing.TagReceiptId(span, receiptID)

	record := &models.ReceiptRecord{
		ReceiptID:    receiptID,
		MessageID:    job.MessageID,
		Filename:     attachment.Filename,
		S3Key:        attachment.S3Key,
		ContentType:  attachment.ContentType,
		FileSize:     attachment.Size,
		EmailFromRaw: job.EmailFromRaw,
		EmailFrom:    job.EmailFrom,
		EmailName:    job.EmailName,
		EmailSubject: job.EmailSubject,
		ProcessedAt:  time.Now().UTC().Format(time.RFC3339),
		Status:       enum.ReceiptStatusFailed,
	}

	fileData, err := p.storage.Download(ctx, attachment.S3Key)
	if err != nil {
		tracing.TraceErr(span, err)
		p.logger.Errorf("Failed to download %s: %v", attachment.S3Key, err)
		record.FailureReason = "failed to load attachment from storage"
		p.saveRecord(ctx, span, record)
		return
	}
	record.FileSize = int64(len(fileData))

	fields, err := p.extraction.ExtractReceipt(ctx, fileData)
	if err != nil || fields == nil {
		tracing.TraceErr(span, err)
		p.logger.Warnf("Extraction failed for %s: %v", receiptID, err)
		record.FailureReason = "failed to extract receipt info"
		p.saveRecord(ctx, span, record)
		return
	}

	record.Status = enum.ReceiptStatusProcessed
	record.ReceiptData = fields
	if !p.saveRecord(ctx, span, record) {
		return
	}
	p.logger.Infof("Saved receipt record: %s", receiptID)

	err = p.notifications.SendReceiptProcessed(ctx, job.EmailFrom, receiptID, attachment.Filename)
	if err != nil {
		// best effort only
		tracing.TraceErr(span, err)
		p.logger.Warnf("Failed to send notification for %s: %v", receiptID, err)
	}
}

func (p *receiptProcessor) saveRecord(ctx context.Context, span opentracing.Span, record *models.ReceiptRecord) bool {
	err := p.repository.Save(ctx, record)
	if err != nil {
		// isolate the failure; sibling attachments still get processed
		tracing.TraceErr(span, err)
		p.logger.Errorf("Failed to save receipt record %s: %v", record.ReceiptID, err)
		return false
	}
	return true
}
