package repository

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/dynamodb/expression"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/NazarSenchuk/receipt-processor/interfaces"
	"github.com/NazarSenchuk/receipt-processor/internal/models"
	"github.com/NazarSenchuk/receipt-processor/internal/tracing"
)

type receiptRepository struct {
	client          dynamodbiface.DynamoDBAPI
	tableName       string
	senderIndexName string
}

func NewReceiptRepository(client dynamodbiface.DynamoDBAPI, tableName, senderIndexName string) interfaces.ReceiptRepository {
	return &receiptRepository{
		client:          client,
		tableName:       tableName,
		senderIndexName: senderIndexName,
	}
}

func (r *receiptRepository) Save(ctx context.Context, record *models.ReceiptRecord) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ReceiptRepository.Save")
	defer span.Finish()
	tracing.SetDefaultDynamoRepositorySpanTags(ctx, span)
	tracing.TagReceiptId(span, record.ReceiptID)

	item, err := dynamodbattribute.MarshalMap(record)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to marshal receipt record")
	}

	_, err = r.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to put receipt record")
	}

	return nil
}

func (r *receiptRepository) GetBySender(ctx context.Context, emailFrom string) ([]models.ReceiptRecord, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ReceiptRepository.GetBySender")
	defer span.Finish()
	tracing.SetDefaultDynamoRepositorySpanTags(ctx, span)
	tracing.TagSenderEmail(span, emailFrom)

	keyCondition := expression.Key("email_from").Equal(expression.Value(emailFrom))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to build query expression")
	}

	output, err := r.client.QueryWithContext(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.senderIndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		// newest first
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to query receipts by sender")
	}

	records := make([]models.ReceiptRecord, 0, len(output.Items))
	err = dynamodbattribute.UnmarshalListOfMaps(output.Items, &records)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to unmarshal receipt records")
	}

	return records, nil
}
