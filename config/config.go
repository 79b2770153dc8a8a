package config

type AppConfig struct {
	APIPort string `env:"PORT" envDefault:"8080"`
}

type AWSConfig struct {
	Region             string `env:"AWS_REGION" envDefault:"us-east-1"`
	BucketName         string `env:"BUCKET_NAME" envDefault:"checker-main-12"`
	TableName          string `env:"TABLE_NAME" envDefault:"receipts-table"`
	SenderIndexName    string `env:"TABLE_SENDER_INDEX" envDefault:"email_from-index"`
	IntakeQueueURL     string `env:"INTAKE_QUEUE_URL,required"`
	ProcessingQueueURL string `env:"PROCESSING_QUEUE_URL,required"`
}

type OpenRouterConfig struct {
	APIKey string `env:"OPENROUTER_API_KEY,required"`
	Model  string `env:"OPENROUTER_MODEL" envDefault:"nvidia/nemotron-nano-12b-v2-vl:free"`
	URL    string `env:"OPENROUTER_URL" envDefault:"https://openrouter.ai/api/v1/chat/completions"`
}

type NotificationConfig struct {
	SenderEmail string `env:"SENDER_EMAIL" envDefault:"receipts@senchuknazar123.online"`
}
