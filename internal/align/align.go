// Package align distributes a known audio duration across untimed subtitle
// segments.
//
// The split is proportional to each segment's share of the total source-text
// character count. This is a best-effort visual sync, not a transcript-derived
// alignment: the synthesis API reports no per-word timing, so character weight
// is the only signal available.
package align

import (
	"github.com/narravoapp/narravo-server/internal/domain"
)

// Align assigns each segment a start and end time proportional to its share
// of the total source-text length, producing a contiguous, non-overlapping
// partition of [0, totalDuration]. The input slice is not modified; the
// returned slice has the same length, order, and text fields.
//
// The cursor accumulates floating-point error over many segments; that is
// acceptable and deliberately not corrected by re-normalization.
//
// If every segment has empty source text the proportional share is 0/0, so
// the duration is split equally across segments instead.
func Align(segments []domain.Segment, totalDuration float64) []domain.Segment {
	if len(segments) == 0 {
		return nil
	}

	out := make([]domain.Segment, len(segments))
	copy(out, segments)

	totalChars := domain.TotalSourceChars(segments)

	cursor := 0.0
	for i := range out {
		var share float64
		if totalChars > 0 {
			share = float64(len([]rune(out[i].Source))) / float64(totalChars)
		} else {
			share = 1.0 / float64(len(out))
		}

		duration := share * totalDuration
		out[i].Start = cursor
		out[i].End = cursor + duration
		cursor += duration
	}

	return out
}
