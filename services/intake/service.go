package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/jhillyerd/enmime"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/NazarSenchuk/receipt-processor/dto"
	"github.com/NazarSenchuk/receipt-processor/interfaces"
	"github.com/NazarSenchuk/receipt-processor/internal/logger"
	"github.com/NazarSenchuk/receipt-processor/internal/models"
	"github.com/NazarSenchuk/receipt-processor/internal/tracing"
	"github.com/NazarSenchuk/receipt-processor/internal/utils"
	"github.com/NazarSenchuk/receipt-processor/services/queue"
)

type intakeService struct {
	storage            interfaces.StorageService
	queue              interfaces.QueueService
	processingQueueURL string
	logger             logger.Logger
}

func NewIntakeService(storage interfaces.StorageService, queueService interfaces.QueueService, processingQueueURL string, log logger.Logger) interfaces.IntakeService {
	return &intakeService{
		storage:            storage,
		queue:              queueService,
		processingQueueURL: processingQueueURL,
		logger:             log,
	}
}

// ProcessNotification handles one inbound mail notification: it downloads
// the raw message, extracts attachments into blob storage, writes the
// manifest, and enqueues a work descriptor when the message carries images.
// Parse failures are fatal for the message; the queue's redelivery retries
// it, and deterministic storage keys make the retry overwrite cleanly.
func (s *intakeService) ProcessNotification(ctx context.Context, message interfaces.QueueMessage) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "intakeService.ProcessNotification")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	var notification dto.MailNotification
	err := json.Unmarshal([]byte(message.Body), &notification)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to parse mail notification")
	}

	err = notification.Validate()
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	messageID := notification.Mail.MessageID
	tracing.TagMessageId(span, messageID)
	s.logger.Infof("Processing message: %s", messageID)

	rawMessage, err := s.storage.Download(ctx, notification.Receipt.Action.ObjectKey)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "failed to download raw message %s", notification.Receipt.Action.ObjectKey)
	}

	manifest, err := s.extractAttachments(ctx, rawMessage, notification)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	metadata, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to marshal manifest")
	}

	err = s.storage.Upload(ctx, models.ManifestKey(messageID), metadata, "application/json")
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to upload manifest")
	}

	s.logger.Infof("Injection complete: %d files processed for message %s", manifest.FileCount, messageID)

	return s.dispatch(ctx, manifest)
}

// extractAttachments walks the MIME tree and uploads every named leaf part.
// Attachments already uploaded when a later part fails simply stay in place;
// a retry overwrites them under the same keys.
func (s *intakeService) extractAttachments(ctx context.Context, rawMessage []byte, notification dto.MailNotification) (*models.Manifest, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "intakeService.extractAttachments")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	envelope, err := enmime.ReadEnvelope(bytes.NewReader(rawMessage))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse mime message")
	}

	messageID := notification.Mail.MessageID
	manifest := &models.Manifest{
		MessageID:   messageID,
		From:        notification.Mail.CommonHeaders.From,
		To:          notification.Mail.CommonHeaders.To,
		Subject:     notification.Mail.CommonHeaders.Subject,
		Timestamp:   notification.Mail.Timestamp,
		Attachments: []models.Attachment{},
	}

	var uploadErr error
	walkParts(envelope.Root, func(part *enmime.Part) {
		if uploadErr != nil {
			return
		}
		// multipart containers are structure, not content
		if strings.HasPrefix(part.ContentType, "multipart/") {
			return
		}
		// unnamed parts are body text or inline content, never attachments
		if part.FileName == "" {
			return
		}

		attachment := models.Attachment{
			Filename:    part.FileName,
			S3Key:       models.AttachmentKey(messageID, part.FileName),
			ContentType: part.ContentType,
			Size:        int64(len(part.Content)),
		}

		err := s.storage.Upload(ctx, attachment.S3Key, part.Content, attachment.ContentType)
		if err != nil {
			uploadErr = errors.Wrapf(err, "failed to upload attachment %s", part.FileName)
			return
		}

		manifest.Attachments = append(manifest.Attachments, attachment)
		if attachment.IsImage() {
			manifest.HasImages = true
		}
		s.logger.Infof("Injected file: %s -> %s", attachment.Filename, attachment.S3Key)
	})
	if uploadErr != nil {
		tracing.TraceErr(span, uploadErr)
		return nil, uploadErr
	}

	manifest.FileCount = len(manifest.Attachments)
	return manifest, nil
}

// dispatch enqueues a work descriptor iff the message carries at least one
// image. The descriptor references the manifest by id and holds no bytes.
func (s *intakeService) dispatch(ctx context.Context, manifest *models.Manifest) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "intakeService.dispatch")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagMessageId(span, manifest.MessageID)

	if !manifest.HasImages {
		s.logger.Infof("No images found in message %s, skipping processing queue", manifest.MessageID)
		return nil
	}

	var fromRaw string
	if len(manifest.From) > 0 {
		fromRaw = manifest.From[0]
	}
	name, address := utils.ParseAddress(fromRaw)

	job := dto.ReceiptJob{
		MessageID:    manifest.MessageID,
		FileCount:    manifest.FileCount,
		HasImages:    manifest.HasImages,
		EmailFromRaw: fromRaw,
		EmailFrom:    address,
		EmailName:    name,
		EmailSubject: manifest.Subject,
	}

	err := s.queue.SendMessage(ctx, s.processingQueueURL, job, map[string]string{
		queue.AttributeMessageID: manifest.MessageID,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to enqueue receipt job")
	}

	s.logger.Infof("Sent message %s to processing queue", manifest.MessageID)
	return nil
}

func walkParts(part *enmime.Part, visit func(*enmime.Part)) {
	if part == nil {
		return
	}
	visit(part)
	walkParts(part.FirstChild, visit)
	walkParts(part.NextSibling, visit)
}
