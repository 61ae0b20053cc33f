package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangedMessage announces a mutation of the ledger. It carries only
// the entity coordinates; the snapshot worker reads the full state from the
// database itself.
type LedgerChangedMessage struct {
	Entity    string    `json:"entity"`
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(entity, op, id string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Entity:    entity,
		Op:        op,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
