package domain

import "time"

// Narration is one completed generation: the translated, segmented text and
// the framed audio that narrates it. The audio payload itself is stored
// separately from this record (it can be several megabytes).
type Narration struct {
	ID string `json:"id"`

	// InputText is the raw user input the generation started from.
	InputText string `json:"input_text"`
	// SourceLanguage is the BCP 47 tag of the input language.
	SourceLanguage string `json:"source_language"`
	// TargetLanguage is the BCP 47 tag the text was translated into.
	TargetLanguage string `json:"target_language"`
	// VoiceID is the synthesis voice used.
	VoiceID string `json:"voice_id"`

	// Segments are fully aligned by the time a narration is persisted.
	Segments []Segment `json:"segments"`

	// SampleRate is the PCM sample rate of the audio payload.
	SampleRate int `json:"sample_rate"`
	// Duration is the audio length in seconds, derived from the container.
	Duration float64 `json:"duration"`
	// AudioSize is the byte length of the WAV payload.
	AudioSize int64 `json:"audio_size"`

	CreatedAt time.Time `json:"created_at"`
}

// ActiveSegmentAt returns the index of the segment whose span contains the
// given playback position, or -1 if none does. Pure query - callers re-invoke
// it on every position update.
func (n *Narration) ActiveSegmentAt(position float64) int {
	return ActiveSegment(n.Segments, position)
}

// ActiveSegment returns the index of the segment covering position, or -1.
// A position exactly on a boundary belongs to the later segment, except the
// final boundary which still belongs to the last segment.
func ActiveSegment(segments []Segment, position float64) int {
	if len(segments) == 0 || position < 0 {
		return -1
	}
	for i, seg := range segments {
		if position >= seg.Start && position < seg.End {
			return i
		}
	}
	// End of playback sits on the last segment's closing boundary.
	last := len(segments) - 1
	if segments[last].End > 0 && position == segments[last].End {
		return last
	}
	return -1
}
