package notifications

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/NazarSenchuk/receipt-processor/config"
)

type mockSES struct {
	sesiface.SESAPI
	mock.Mock
}

func (m *mockSES) SendEmailWithContext(ctx aws.Context, input *ses.SendEmailInput, opts ...request.Option) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

func TestSendReceiptProcessed(t *testing.T) {
	var captured *ses.SendEmailInput
	client := &mockSES{}
	client.On("SendEmailWithContext", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*ses.SendEmailInput)
		}).
		Return(&ses.SendEmailOutput{}, nil)

	service := NewNotificationServiceWithClient(client, &config.NotificationConfig{SenderEmail: "receipts@processor.test"})
	err := service.SendReceiptProcessed(context.Background(), "jane@x.com", "msg-1_receipt.jpg", "receipt.jpg")
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "receipts@processor.test", aws.StringValue(captured.Source))
	require.Len(t, captured.Destination.ToAddresses, 1)
	assert.Equal(t, "jane@x.com", aws.StringValue(captured.Destination.ToAddresses[0]))
	assert.Equal(t, "Processed receipt", aws.StringValue(captured.Message.Subject.Data))
	assert.Contains(t, aws.StringValue(captured.Message.Body.Html.Data), "msg-1_receipt.jpg")
	assert.Contains(t, aws.StringValue(captured.Message.Body.Html.Data), "receipt.jpg")
}

func TestSendReceiptProcessedFailure(t *testing.T) {
	client := &mockSES{}
	client.On("SendEmailWithContext", mock.Anything, mock.Anything).
		Return(nil, errors.New("address not verified"))

	service := NewNotificationServiceWithClient(client, &config.NotificationConfig{SenderEmail: "receipts@processor.test"})
	err := service.SendReceiptProcessed(context.Background(), "jane@x.com", "msg-1_receipt.jpg", "receipt.jpg")
	assert.Error(t, err)
}
