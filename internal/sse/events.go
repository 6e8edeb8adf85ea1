// Package sse implements Server-Sent Events for pushing generation lifecycle
// and playback state updates to the browser client.
package sse

import (
	"time"

	"github.com/narravoapp/narravo-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventGenerationStarted fires when a generation request is accepted.
	EventGenerationStarted EventType = "generation.started"
	// EventGenerationCompleted fires when a narration has been persisted.
	EventGenerationCompleted EventType = "generation.completed"
	// EventGenerationFailed fires when either remote call aborts a generation.
	EventGenerationFailed EventType = "generation.failed"

	// EventPlaybackState fires on every playback state machine transition
	// (load, play, pause, ended, scrub begin/commit, rate/volume change).
	EventPlaybackState EventType = "playback.state"
	// EventPlaybackPosition fires on clock ticks while playing. Suppressed
	// while a drag-scrub is in progress.
	EventPlaybackPosition EventType = "playback.position"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// GenerationStartedData is the payload for generation.started.
type GenerationStartedData struct {
	SourceLanguage string `json:"source_language"`
	VoiceID        string `json:"voice_id"`
}

// GenerationCompletedData is the payload for generation.completed.
// Carries the full narration so clients render without a follow-up fetch.
type GenerationCompletedData struct {
	Narration *domain.Narration `json:"narration"`
}

// GenerationFailedData is the payload for generation.failed.
type GenerationFailedData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PlaybackStateData is the payload for playback.state.
type PlaybackStateData struct {
	State domain.PlaybackState `json:"state"`
}

// PlaybackPositionData is the payload for playback.position.
type PlaybackPositionData struct {
	NarrationID   string  `json:"narration_id"`
	Position      float64 `json:"position"`
	Duration      float64 `json:"duration"`
	ActiveSegment int     `json:"active_segment"`
}

// HeartbeatData is the payload for heartbeat events.
type HeartbeatData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(eventType EventType, data any) Event {
	return Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return NewEvent(EventHeartbeat, HeartbeatData{ServerTime: time.Now().UTC()})
}
