package domain

// PlaybackStatus is the playback controller's state machine position.
//
//	Empty -> Loaded -> {Playing <-> Paused} -> Ended
//
// Loading a new source from any state returns to Empty and then Loaded once
// the container reports a duration. Ended is entered automatically when the
// position reaches the duration; play or seek leaves it again.
type PlaybackStatus string

const (
	PlaybackEmpty   PlaybackStatus = "empty"
	PlaybackLoaded  PlaybackStatus = "loaded"
	PlaybackPlaying PlaybackStatus = "playing"
	PlaybackPaused  PlaybackStatus = "paused"
	PlaybackEnded   PlaybackStatus = "ended"
)

// PlaybackState is the observable state of the single playback session.
// Owned by the playback service; mutated only through its operations.
type PlaybackState struct {
	// NarrationID identifies the loaded source, empty when Status is Empty.
	NarrationID string         `json:"narration_id,omitempty"`
	Status      PlaybackStatus `json:"status"`

	// Position and Duration are seconds. Duration is 0 until a source loads.
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`

	// Rate and Volume survive source changes; Position does not.
	Rate   float64 `json:"rate"`
	Volume float64 `json:"volume"`

	// Scrubbing is true while a drag-seek is in progress. Position updates
	// from the clock are suppressed until the drag commits.
	Scrubbing bool `json:"scrubbing"`

	// ActiveSegment is the index of the currently spoken subtitle line,
	// -1 when no segment covers the position.
	ActiveSegment int `json:"active_segment"`
}

// PlayerSettings are the playback preferences that persist across loads and
// across restarts.
type PlayerSettings struct {
	Rate   float64 `json:"rate"`
	Volume float64 `json:"volume"`
}

// DefaultPlayerSettings returns the initial rate and volume.
func DefaultPlayerSettings() PlayerSettings {
	return PlayerSettings{Rate: 1.0, Volume: 1.0}
}
