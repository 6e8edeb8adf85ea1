package domain

// Segment is one subtitle line of a narration, pairing source and translated
// text with a time span on the audio timeline.
//
// Start and End are seconds. Both are zero until the timeline aligner runs;
// after alignment adjacent segments tile [0, duration] with no gaps or
// overlaps (segments[i].End == segments[i+1].Start).
type Segment struct {
	// Index is the stable ordinal position among sibling segments.
	// Assigned at segmentation time, never reassigned.
	Index int `json:"index"`

	// Source is the text in the original language. Never empty.
	Source string `json:"source"`

	// Translated is the text in the target language. May be empty if
	// translation yields nothing for a segment.
	Translated string `json:"translated"`

	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Aligned reports whether the segment list has been through the timeline
// aligner. The sentinel is the last segment's End: zero means unaligned.
func Aligned(segments []Segment) bool {
	if len(segments) == 0 {
		return false
	}
	return segments[len(segments)-1].End > 0
}

// TotalSourceChars sums the source text length over all segments.
func TotalSourceChars(segments []Segment) int {
	total := 0
	for _, seg := range segments {
		total += len([]rune(seg.Source))
	}
	return total
}
