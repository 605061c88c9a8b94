package events

import (
	"encoding/json"
	"time"
)

// Action is the kind of store mutation an event describes.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// MutationMessage is the lightweight event published after a successful
// store mutation. Consumers re-read the record through the API; the
// message carries identity only.
type MutationMessage struct {
	Entity    string    `json:"entity"`
	Action    Action    `json:"action"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMutationMessage(entity string, action Action, id int64) *MutationMessage {
	return &MutationMessage{
		Entity:    entity,
		Action:    action,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *MutationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MutationMessageFromJSON(data []byte) (*MutationMessage, error) {
	var msg MutationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
