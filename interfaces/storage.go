package interfaces

import "context"

// StorageService is the durable blob store shared by every pipeline stage.
type StorageService interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
}
