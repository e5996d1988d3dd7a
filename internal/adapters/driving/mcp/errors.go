// Package mcp provides an MCP (Model Context Protocol) server adapter for Ubuzima.
// It lets AI assistants ask grounded questions about Rwanda and search the NISR index.
package mcp

import "errors"

var (
	// ErrMissingChatService is returned when the chat service is not provided.
	ErrMissingChatService = errors.New("mcp: chat service is required")

	// ErrMissingIndexService is returned when the index service is not provided.
	ErrMissingIndexService = errors.New("mcp: index service is required")

	// ErrEmptyQuery is returned by tools called without a query.
	ErrEmptyQuery = errors.New("mcp: query is required")
)
