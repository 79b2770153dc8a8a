package errors

import "github.com/pkg/errors"

var (
	// intake errors
	ErrMissingMessageID = errors.New("message id is missing")
	ErrMissingObjectKey = errors.New("raw message object key is missing")

	// extraction errors
	ErrEmptyModelResponse = errors.New("model response contains no choices")
)
