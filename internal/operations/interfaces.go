package operations

// WebSocketHub receives every run snapshot the broadcaster produces
type WebSocketHub interface {
	BroadcastUpdate(eventType, step, status string, metadata interface{})
}
