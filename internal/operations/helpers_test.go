package operations

import (
	"sync"
)

type hubCall struct {
	EventType string
	Step      string
	Status    string
	Snapshot  *OperationSnapshot
}

type recordingHub struct {
	mu    sync.Mutex
	calls []hubCall
}

func (h *recordingHub) BroadcastUpdate(eventType, step, status string, metadata interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	snap, _ := metadata.(*OperationSnapshot)
	h.calls = append(h.calls, hubCall{EventType: eventType, Step: step, Status: status, Snapshot: snap})
}

func (h *recordingHub) Calls() []hubCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]hubCall(nil), h.calls...)
}

func (h *recordingHub) EventTypes() []string {
	var out []string
	for _, c := range h.Calls() {
		out = append(out, c.EventType)
	}
	return out
}
