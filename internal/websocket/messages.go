package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeFeedSyncCompleted MessageType = "feed.sync_completed"
	TypeFeedSyncError     MessageType = "feed.sync_error"
	TypeConflictDetected  MessageType = "calendar.conflict_detected"
	TypeNotification      MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong MessageType = "pong"
)

// Message is the WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// FeedSyncPayload is the payload for feed.sync_completed events.
type FeedSyncPayload struct {
	FeedID       string `json:"feed_id"`
	FeedName     string `json:"feed_name"`
	Status       string `json:"status"`
	EventsFound  int    `json:"events_found"`
	EventsStored int    `json:"events_stored"`
	Skipped      int    `json:"skipped"`
}

// FeedSyncErrorPayload is the payload for feed.sync_error events.
type FeedSyncErrorPayload struct {
	FeedID   string `json:"feed_id"`
	FeedName string `json:"feed_name"`
	Error    string `json:"error"`
	Message  string `json:"message"`
}

// ConflictPayload is the payload for calendar.conflict_detected events.
// Conflicts are surfaced for manual resolution; nothing is auto-cancelled.
type ConflictPayload struct {
	PropertyID   string    `json:"property_id"`
	SourceA      string    `json:"source_a"`
	ChannelA     string    `json:"channel_a,omitempty"`
	SourceB      string    `json:"source_b"`
	ChannelB     string    `json:"channel_b,omitempty"`
	OverlapStart time.Time `json:"overlap_start"`
	OverlapEnd   time.Time `json:"overlap_end"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}
