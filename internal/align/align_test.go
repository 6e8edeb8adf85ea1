package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narravoapp/narravo-server/internal/domain"
)

func segs(sources ...string) []domain.Segment {
	out := make([]domain.Segment, len(sources))
	for i, s := range sources {
		out[i] = domain.Segment{Index: i, Source: s}
	}
	return out
}

func TestAlign_ProportionalSplit(t *testing.T) {
	// Source lengths 5 and 7 over 12 seconds: [0,5) and [5,12).
	aligned := Align(segs("Hello", "World!!"), 12)

	require.Len(t, aligned, 2)
	assert.InDelta(t, 0.0, aligned[0].Start, 1e-9)
	assert.InDelta(t, 5.0, aligned[0].End, 1e-9)
	assert.InDelta(t, 5.0, aligned[1].Start, 1e-9)
	assert.InDelta(t, 12.0, aligned[1].End, 1e-9)
}

func TestAlign_ContiguousCoverage(t *testing.T) {
	sources := []string{"one", "twotwo", "three three", "f", "a longer closing sentence here"}
	aligned := Align(segs(sources...), 73.5)

	require.Len(t, aligned, len(sources))
	assert.Equal(t, 0.0, aligned[0].Start)

	for i := 0; i < len(aligned)-1; i++ {
		assert.Equal(t, aligned[i].End, aligned[i+1].Start, "segment %d boundary", i)
		assert.GreaterOrEqual(t, aligned[i].End, aligned[i].Start)
	}

	last := aligned[len(aligned)-1]
	assert.InEpsilon(t, 73.5, last.End, 1e-6)
}

func TestAlign_DurationsProportionalToLength(t *testing.T) {
	aligned := Align(segs("aaaa", "aa"), 30)

	d0 := aligned[0].End - aligned[0].Start
	d1 := aligned[1].End - aligned[1].Start
	assert.InEpsilon(t, 2.0, d0/d1, 1e-9, "4 chars vs 2 chars")
}

func TestAlign_PreservesTextAndOrder(t *testing.T) {
	in := []domain.Segment{
		{Index: 0, Source: "Hola", Translated: "Hello"},
		{Index: 1, Source: "Adiós", Translated: "Goodbye"},
	}
	aligned := Align(in, 8)

	require.Len(t, aligned, 2)
	assert.Equal(t, 0, aligned[0].Index)
	assert.Equal(t, "Hola", aligned[0].Source)
	assert.Equal(t, "Hello", aligned[0].Translated)
	assert.Equal(t, 1, aligned[1].Index)
	assert.Equal(t, "Adiós", aligned[1].Source)

	// Input untouched.
	assert.Equal(t, 0.0, in[1].End)
}

func TestAlign_EqualSplitFallback(t *testing.T) {
	// All-empty source text would divide by zero; duration splits equally.
	aligned := Align(segs("", "", "", ""), 10)

	require.Len(t, aligned, 4)
	for i, seg := range aligned {
		assert.InDelta(t, float64(i)*2.5, seg.Start, 1e-9)
		assert.InDelta(t, float64(i+1)*2.5, seg.End, 1e-9)
	}
}

func TestAlign_ZeroDuration(t *testing.T) {
	aligned := Align(segs("abc", "def"), 0)

	for _, seg := range aligned {
		assert.Equal(t, 0.0, seg.Start)
		assert.Equal(t, 0.0, seg.End)
	}
}

func TestAlign_Idempotent(t *testing.T) {
	in := segs("first sentence", "second", "the third one")

	first := Align(in, 42.25)
	second := Align(in, 42.25)

	// Bit-identical timestamps, not just close.
	for i := range first {
		assert.Equal(t, first[i].Start, second[i].Start)
		assert.Equal(t, first[i].End, second[i].End)
	}
}

func TestAlign_Empty(t *testing.T) {
	assert.Nil(t, Align(nil, 10))
}

func TestAlign_MultibyteSourceCountsRunes(t *testing.T) {
	// "ñandú" is 5 runes; byte length would skew the split.
	aligned := Align(segs("ñandú", "abcde"), 10)

	d0 := aligned[0].End - aligned[0].Start
	d1 := aligned[1].End - aligned[1].Start
	assert.InDelta(t, d0, d1, 1e-9)
}
