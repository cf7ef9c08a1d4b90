package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action names the mutation a change event announces.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// ChangeEvent announces a committed mutation of one record. Consumers fetch
// the current state themselves; the event carries only the identity.
type ChangeEvent struct {
	Resource  string    `json:"resource"`
	Action    Action    `json:"action"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeEvent(resource string, action Action, id int64) ChangeEvent {
	return ChangeEvent{
		Resource:  resource,
		Action:    action,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

func (e ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ChangeEventFromJSON decodes and checks a message body.
func ChangeEventFromJSON(data []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ChangeEvent{}, err
	}
	if ev.Resource == "" {
		return ChangeEvent{}, fmt.Errorf("change event without resource")
	}
	switch ev.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return ChangeEvent{}, fmt.Errorf("unknown action %q", ev.Action)
	}
	if ev.ID <= 0 {
		return ChangeEvent{}, fmt.Errorf("change event without id")
	}
	return ev, nil
}
