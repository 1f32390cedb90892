// Package events contains the event contracts pushed to WebSocket clients.
package events

import (
	"time"

	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeMarketStatus is sent on every snapshot publish
	MessageTypeMarketStatus MessageType = "market:status"

	// MessageTypeIngestionReport is sent when an ingestion cycle finishes
	MessageTypeIngestionReport MessageType = "ingestion:report"

	MessageTypeConnect    MessageType = "connect"
	MessageTypeDisconnect MessageType = "disconnect"
	MessageTypeError      MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// NewMarketStatus wraps a store status in a message envelope.
func NewMarketStatus(id string, status domain.Status) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			ID:        id,
			Type:      MessageTypeMarketStatus,
			Timestamp: time.Now().UTC(),
		},
		Data: status,
	}
}

// NewIngestionReport wraps a finished cycle report in a message envelope.
func NewIngestionReport(id string, report domain.RunReport) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			ID:        id,
			Type:      MessageTypeIngestionReport,
			Timestamp: time.Now().UTC(),
			TraceID:   report.TraceID,
		},
		Data: report,
	}
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	BaseMessage
	Data struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Fatal   bool   `json:"fatal"`
	} `json:"data"`
}
