// Package httpapi serves the Ubuzima question-answering API over HTTP.
package httpapi

import "errors"

var (
	// ErrMissingChatService is returned when the chat service is not provided.
	ErrMissingChatService = errors.New("httpapi: chat service is required")

	// ErrMissingIndexService is returned when the index service is not provided.
	ErrMissingIndexService = errors.New("httpapi: index service is required")
)
