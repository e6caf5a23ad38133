// Package mcp serves the ccindex indexes over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"

	ccerrors "github.com/Aman-CERP/ccindex/internal/errors"
)

// Custom MCP error codes.
const (
	// ErrCodeIndexNotFound indicates an index is empty or unavailable.
	ErrCodeIndexNotFound = -32001

	// ErrCodeTimeout indicates the request timed out or was cancelled.
	ErrCodeTimeout = -32003

	// ErrCodeEntryNotFound indicates the requested id or name is not indexed.
	ErrCodeEntryNotFound = -32004

	// Standard JSON-RPC error codes.
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// Sentinel errors for internal use.
var (
	ErrIndexNotFound    = errors.New("index not found")
	ErrToolNotFound     = errors.New("tool not found")
	ErrInvalidParams    = errors.New("invalid parameters")
	ErrResourceNotFound = errors.New("resource not found")
)

// MCPError is an MCP protocol error.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}
	var ce *ccerrors.CCError
	if errors.As(err, &ce) {
		return mapCCError(ce)
	}

	switch {
	case errors.Is(err, ErrIndexNotFound):
		return &MCPError{Code: ErrCodeIndexNotFound, Message: "Index not available. Run 'ccindex build' first."}
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	case errors.Is(err, ErrToolNotFound):
		return &MCPError{Code: ErrCodeMethodNotFound, Message: "Tool not found."}
	case errors.Is(err, ErrInvalidParams):
		return &MCPError{Code: ErrCodeInvalidParams, Message: "Invalid parameters."}
	case errors.Is(err, ErrResourceNotFound):
		return &MCPError{Code: ErrCodeMethodNotFound, Message: "Resource not found."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

// NewInvalidParamsError creates an invalid-parameters error.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewEntryNotFoundError reports a missing component id or form name.
func NewEntryNotFoundError(kind, key string) *MCPError {
	return &MCPError{Code: ErrCodeEntryNotFound, Message: fmt.Sprintf("%s %q not found.", kind, key)}
}

// NewMethodNotFoundError reports an unknown tool.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{Code: ErrCodeMethodNotFound, Message: fmt.Sprintf("Tool '%s' not found.", name)}
}

func mapCCError(ce *ccerrors.CCError) *MCPError {
	msg := ce.Message
	if ce.Suggestion != "" {
		msg = fmt.Sprintf("%s %s", ce.Message, ce.Suggestion)
	}

	switch ce.Category {
	case ccerrors.CategoryValidation:
		if ce.Code == ccerrors.ErrCodeNotFound {
			return &MCPError{Code: ErrCodeEntryNotFound, Message: msg}
		}
		return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
	case ccerrors.CategoryIO:
		switch ce.Code {
		case ccerrors.ErrCodeCorruptIndex, ccerrors.ErrCodeSourceInsufficient, ccerrors.ErrCodeFileNotFound:
			return &MCPError{Code: ErrCodeIndexNotFound, Message: msg}
		}
		return &MCPError{Code: ErrCodeInternalError, Message: msg}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: msg}
	}
}
