package websocket

import (
	"log"
	"time"
)

// EventBroadcaster handles broadcasting domain events to WebSocket clients.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastFeedSyncCompleted sends a feed sync completed event.
func (b *EventBroadcaster) BroadcastFeedSyncCompleted(feedID, feedName string, eventsFound, eventsStored, skipped int) {
	b.broadcast(NewMessage(TypeFeedSyncCompleted, FeedSyncPayload{
		FeedID:       feedID,
		FeedName:     feedName,
		Status:       "ok",
		EventsFound:  eventsFound,
		EventsStored: eventsStored,
		Skipped:      skipped,
	}))
}

// BroadcastFeedSyncError sends a feed sync error event.
func (b *EventBroadcaster) BroadcastFeedSyncError(feedID, feedName string, err error) {
	b.broadcast(NewMessage(TypeFeedSyncError, FeedSyncErrorPayload{
		FeedID:   feedID,
		FeedName: feedName,
		Error:    "sync_error",
		Message:  err.Error(),
	}))
}

// BroadcastConflictDetected sends a cross-channel conflict event.
func (b *EventBroadcaster) BroadcastConflictDetected(propertyID, sourceA, channelA, sourceB, channelB string, overlapStart, overlapEnd time.Time) {
	b.broadcast(NewMessage(TypeConflictDetected, ConflictPayload{
		PropertyID:   propertyID,
		SourceA:      sourceA,
		ChannelA:     channelA,
		SourceB:      sourceB,
		ChannelB:     channelB,
		OverlapStart: overlapStart,
		OverlapEnd:   overlapEnd,
	}))
}

// BroadcastNotification sends a free-form notification to all clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	b.broadcast(NewMessage(TypeNotification, NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}))
}

func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}
	b.hub.Broadcast(data)
}
