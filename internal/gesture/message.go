package gesture

import "time"

// MessageTypeGesture is the Type of messages carrying a gesture.
const MessageTypeGesture = "gesture"

// Message is the wire form of an Event sent to websocket clients and
// ZeroMQ subscribers. The cbor tags give the same keys as the JSON form.
type Message struct {
	Type      string    `json:"type" cbor:"type"`
	Direction Direction `json:"direction" cbor:"direction"`
	Timestamp int64     `json:"timestamp" cbor:"timestamp"`
}

// NewMessage stamps ev with t in Unix milliseconds.
func NewMessage(ev Event, t time.Time) Message {
	return Message{
		Type:      MessageTypeGesture,
		Direction: ev.Direction,
		Timestamp: t.UnixMilli(),
	}
}
