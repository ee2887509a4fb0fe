// Package events contains the event contracts streamed to WebSocket clients while macro runs progress.
package events

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MessageTypeRunStarted     MessageType = "run:started"
	MessageTypeStageStarted   MessageType = "stage:started"
	MessageTypeStageCompleted MessageType = "stage:completed"
	MessageTypeRunCompleted   MessageType = "run:completed"
	MessageTypeRunFailed      MessageType = "run:failed"

	MessageTypeConnect MessageType = "connect"
)
