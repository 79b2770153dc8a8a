package queue

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/NazarSenchuk/receipt-processor/interfaces"
	"github.com/NazarSenchuk/receipt-processor/internal/tracing"
)

const (
	// AttributeMessageID is the transport-level fallback identifier set on
	// every published work descriptor.
	AttributeMessageID = "message_id"

	defaultWaitTimeSeconds = 20
)

type sqsService struct {
	client sqsiface.SQSAPI
}

func NewQueueService(sess *session.Session) interfaces.QueueService {
	return &sqsService{client: sqs.New(sess)}
}

// NewQueueServiceWithClient is used by tests to inject a mocked SQS API.
func NewQueueServiceWithClient(client sqsiface.SQSAPI) interfaces.QueueService {
	return &sqsService{client: client}
}

func (s *sqsService) SendMessage(ctx context.Context, queueURL string, payload interface{}, attributes map[string]string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "sqsService.SendMessage")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.LogObjectAsJson(span, "payload", payload)

	body, err := json.Marshal(payload)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to marshal queue payload")
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(body)),
	}

	if len(attributes) > 0 {
		input.MessageAttributes = make(map[string]*sqs.MessageAttributeValue, len(attributes))
		for name, value := range attributes {
			input.MessageAttributes[name] = &sqs.MessageAttributeValue{
				DataType:    aws.String("String"),
				StringValue: aws.String(value),
			}
		}
	}

	_, err = s.client.SendMessageWithContext(ctx, input)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to send queue message")
	}
	return nil
}

func (s *sqsService) ReceiveMessages(ctx context.Context, queueURL string, maxMessages int64) ([]interfaces.QueueMessage, error) {
	output, err := s.client.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(queueURL),
		MaxNumberOfMessages:   aws.Int64(maxMessages),
		WaitTimeSeconds:       aws.Int64(defaultWaitTimeSeconds),
		MessageAttributeNames: []*string{aws.String(sqs.QueueAttributeNameAll)},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to receive queue messages")
	}

	messages := make([]interfaces.QueueMessage, 0, len(output.Messages))
	for _, msg := range output.Messages {
		message := interfaces.QueueMessage{
			ID:            aws.StringValue(msg.MessageId),
			ReceiptHandle: aws.StringValue(msg.ReceiptHandle),
			Body:          aws.StringValue(msg.Body),
			Attributes:    make(map[string]string, len(msg.MessageAttributes)),
		}
		for name, attr := range msg.MessageAttributes {
			if attr != nil {
				message.Attributes[name] = aws.StringValue(attr.StringValue)
			}
		}
		messages = append(messages, message)
	}

	return messages, nil
}

func (s *sqsService) DeleteMessage(ctx context.Context, queueURL string, receiptHandle string) error {
	_, err := s.client.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete queue message")
	}
	return nil
}
