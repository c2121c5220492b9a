// Package signal tells running widgets that the shared counts document has
// been rewritten.
package signal

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// KindCountsUpdated is sent after the host writes a new counts document.
const KindCountsUpdated = "counts.updated"

// ErrUnknownKind is returned for messages this version does not understand.
var ErrUnknownKind = errors.New("unknown message kind")

// Message is the body published on the exchange.
type Message struct {
	WrittenAt time.Time `json:"writtenAt"`
	Kind      string    `json:"kind"`
	Entries   int       `json:"entries"`
}

// NewCountsUpdated creates a message announcing a document with entries keys.
func NewCountsUpdated(entries int) *Message {
	return &Message{
		Kind:      KindCountsUpdated,
		WrittenAt: time.Now().UTC(),
		Entries:   entries,
	}
}

// ToJSON converts the message to JSON bytes.
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON decodes and checks a message body.
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind != KindCountsUpdated {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, msg.Kind)
	}
	return &msg, nil
}
