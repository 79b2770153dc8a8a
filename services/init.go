package services

import (
	"github.com/aws/aws-sdk-go/aws/session"

	"github.com/NazarSenchuk/receipt-processor/config"
	"github.com/NazarSenchuk/receipt-processor/interfaces"
	"github.com/NazarSenchuk/receipt-processor/internal/logger"
	"github.com/NazarSenchuk/receipt-processor/internal/repository"
	"github.com/NazarSenchuk/receipt-processor/services/ai"
	"github.com/NazarSenchuk/receipt-processor/services/intake"
	"github.com/NazarSenchuk/receipt-processor/services/notifications"
	"github.com/NazarSenchuk/receipt-processor/services/queue"
	"github.com/NazarSenchuk/receipt-processor/services/receipts"
	"github.com/NazarSenchuk/receipt-processor/services/storage"
)

type Services struct {
	StorageService      interfaces.StorageService
	QueueService        interfaces.QueueService
	ExtractionService   interfaces.ExtractionService
	NotificationService interfaces.NotificationService
	IntakeService       interfaces.IntakeService
	ReceiptProcessor    interfaces.ReceiptProcessorService
}

// InitServices wires the process-wide service graph once per process; every
// invocation afterwards reuses the same clients.
func InitServices(cfg *config.Config, sess *session.Session, log logger.Logger, repos *repository.Repositories) *Services {
	storageService := storage.NewS3StorageService(sess, cfg.AWSConfig.BucketName)
	queueService := queue.NewQueueService(sess)
	extractionService := ai.NewExtractionService(cfg.OpenRouterConfig, log)
	notificationService := notifications.NewNotificationService(sess, cfg.NotificationConfig)

	return &Services{
		StorageService:      storageService,
		QueueService:        queueService,
		ExtractionService:   extractionService,
		NotificationService: notificationService,
		IntakeService:       intake.NewIntakeService(storageService, queueService, cfg.AWSConfig.ProcessingQueueURL, log),
		ReceiptProcessor:    receipts.NewReceiptProcessor(storageService, extractionService, notificationService, repos.ReceiptRepository, log),
	}
}
