package notifications

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/NazarSenchuk/receipt-processor/config"
	"github.com/NazarSenchuk/receipt-processor/interfaces"
	"github.com/NazarSenchuk/receipt-processor/internal/tracing"
)

const (
	charset             = "UTF-8"
	notificationSubject = "Processed receipt"
)

type sesService struct {
	client sesiface.SESAPI
	cfg    *config.NotificationConfig
}

func NewNotificationService(sess *session.Session, cfg *config.NotificationConfig) interfaces.NotificationService {
	return &sesService{
		client: ses.New(sess),
		cfg:    cfg,
	}
}

// NewNotificationServiceWithClient is used by tests to inject a mocked SES API.
func NewNotificationServiceWithClient(client sesiface.SESAPI, cfg *config.NotificationConfig) interfaces.NotificationService {
	return &sesService{client: client, cfg: cfg}
}

func (s *sesService) SendReceiptProcessed(ctx context.Context, toAddress, receiptID, filename string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "sesService.SendReceiptProcessed")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagReceiptId(span, receiptID)
	tracing.TagSenderEmail(span, toAddress)

	bodyHTML := fmt.Sprintf(`<html>
<head></head>
<body>
<h1>Receipt Processor Message</h1>
<p>Your receipt %s with file %s has been completely processed. Visit site to check analytics.</p>
</body>
</html>`, receiptID, filename)

	_, err := s.client.SendEmailWithContext(ctx, &ses.SendEmailInput{
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(toAddress)},
		},
		Message: &ses.Message{
			Body: &ses.Body{
				Html: &ses.Content{
					Charset: aws.String(charset),
					Data:    aws.String(bodyHTML),
				},
			},
			Subject: &ses.Content{
				Charset: aws.String(charset),
				Data:    aws.String(notificationSubject),
			},
		},
		Source: aws.String(s.cfg.SenderEmail),
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to send notification email")
	}

	return nil
}
