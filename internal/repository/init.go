package repository

import (
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

	"github.com/NazarSenchuk/receipt-processor/config"
	"github.com/NazarSenchuk/receipt-processor/interfaces"
)

type Repositories struct {
	ReceiptRepository interfaces.ReceiptRepository
}

func InitRepositories(dynamoClient dynamodbiface.DynamoDBAPI, cfg *config.AWSConfig) *Repositories {
	return &Repositories{
		ReceiptRepository: NewReceiptRepository(dynamoClient, cfg.TableName, cfg.SenderIndexName),
	}
}
