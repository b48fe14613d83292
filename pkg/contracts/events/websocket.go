// Package events contains the message contracts of the dashboard websocket stream.
package events

import (
	"encoding/json"
	"time"
)

// ProtocolVersion is sent in the connect message.
const ProtocolVersion = "1.0"

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Client -> server
	MessageTypeAction  MessageType = "dashboard:action"
	MessageTypeOptions MessageType = "dashboard:options"
	MessageTypeRefresh MessageType = "dashboard:refresh"

	// MessageTypeHeartbeat keeps idle browser connections open; it has no reply.
	MessageTypeHeartbeat MessageType = "heartbeat"

	// Server -> client
	MessageTypeView MessageType = "dashboard:view"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// Error codes carried by ErrorPayload.
const (
	ErrCodeInvalidMessage  = "INVALID_MESSAGE"
	ErrCodeUnsupportedType = "UNSUPPORTED_TYPE"
	ErrCodeInvalidAction   = "INVALID_ACTION"
	ErrCodeInvalidOptions  = "INVALID_OPTIONS"
	ErrCodeSessionNotFound = "SESSION_NOT_FOUND"
	ErrCodeDatasetFailure  = "DATASET_UNAVAILABLE"
	ErrCodeServerError     = "SERVER_ERROR"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// InboundMessage is a message sent by the client. Data is decoded according
// to Type once the message is routed.
type InboundMessage struct {
	ID   string          `json:"id,omitempty"`
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// WebSocketMessage represents a complete server message
type WebSocketMessage struct {
	BaseMessage
	SessionID string      `json:"session_id,omitempty"`
	ReplyTo   string      `json:"reply_to,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// ConnectPayload is sent once after the upgrade.
type ConnectPayload struct {
	SessionID string `json:"session_id"`
	Protocol  string `json:"protocol"`
	Heartbeat int    `json:"heartbeat_interval"` // seconds
}

// ErrorPayload describes a rejected client message.
type ErrorPayload struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Fatal   bool        `json:"fatal"`
}

// NewMessage builds a server message stamped with the current time.
func NewMessage(msgType MessageType, sessionID string, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      msgType,
			Timestamp: time.Now().UTC(),
		},
		SessionID: sessionID,
		Data:      data,
	}
}

// NewErrorMessage builds an error message in reply to the client message id.
func NewErrorMessage(sessionID, replyTo, code, message string, fatal bool) WebSocketMessage {
	msg := NewMessage(MessageTypeError, sessionID, ErrorPayload{
		Code:    code,
		Message: message,
		Fatal:   fatal,
	})
	msg.ReplyTo = replyTo
	return msg
}
