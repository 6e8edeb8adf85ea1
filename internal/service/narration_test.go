package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narravoapp/narravo-server/internal/domain"
	apperrors "github.com/narravoapp/narravo-server/internal/errors"
	"github.com/narravoapp/narravo-server/internal/gemini"
	"github.com/narravoapp/narravo-server/internal/sse"
	"github.com/narravoapp/narravo-server/internal/store"
	"github.com/narravoapp/narravo-server/internal/wav"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.OpenInMemory(discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// stubSegmenter returns canned segment pairs or a fixed error, and records
// the text it was asked to translate.
type stubSegmenter struct {
	pairs []gemini.SegmentPair
	err   error
	calls int
	text  string
}

func (s *stubSegmenter) TranslateSegments(_ context.Context, text string, _, _ domain.Language) ([]gemini.SegmentPair, error) {
	s.calls++
	s.text = text
	return s.pairs, s.err
}

// stubSynthesizer returns canned PCM or a fixed error, and records the text
// it was asked to speak.
type stubSynthesizer struct {
	pcm   []byte
	err   error
	calls int
	text  string
}

func (s *stubSynthesizer) Synthesize(_ context.Context, text, _ string) ([]byte, error) {
	s.calls++
	s.text = text
	return s.pcm, s.err
}

type stubCredential struct{ configured bool }

func (s stubCredential) Configured() bool { return s.configured }

// recordingEmitter captures emitted events for assertions.
type recordingEmitter struct {
	events []sse.Event
}

func (r *recordingEmitter) Emit(event sse.Event) {
	r.events = append(r.events, event)
}

func (r *recordingEmitter) types() []sse.EventType {
	types := make([]sse.EventType, len(r.events))
	for i, event := range r.events {
		types[i] = event.Type
	}
	return types
}

func newTestNarrationService(t *testing.T, seg Segmenter, syn Synthesizer, cred CredentialSource, emitter EventEmitter) *NarrationService {
	t.Helper()
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	return NewNarrationService(testStore(t), seg, syn, cred, emitter, 24000, discardLogger())
}

func validRequest() GenerateRequest {
	return GenerateRequest{
		Text:           "Hello there. How are you?",
		SourceLanguage: "en",
		VoiceID:        "Kore",
	}
}

func TestGenerateHappyPath(t *testing.T) {
	seg := &stubSegmenter{pairs: []gemini.SegmentPair{
		{Source: "Hello there.", Translated: "Hola."},
		{Source: "How are you?", Translated: "¿Cómo estás?"},
	}}
	// 24000 samples = 48000 bytes = one second at 24 kHz.
	syn := &stubSynthesizer{pcm: make([]byte, 48000)}
	emitter := &recordingEmitter{}

	svc := newTestNarrationService(t, seg, syn, stubCredential{true}, emitter)

	narration, err := svc.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, narration)

	assert.NotEmpty(t, narration.ID)
	assert.Equal(t, "en", narration.SourceLanguage)
	assert.Equal(t, "es", narration.TargetLanguage)
	assert.Equal(t, "Kore", narration.VoiceID)
	assert.Equal(t, 24000, narration.SampleRate)
	assert.InDelta(t, 1.0, narration.Duration, 1e-9)

	// Synthesis speaks the reconstructed segment text, space-joined.
	assert.Equal(t, "Hello there. How are you?", syn.text)

	// Segments carry an aligned timeline covering [0, duration].
	require.Len(t, narration.Segments, 2)
	assert.Equal(t, 0.0, narration.Segments[0].Start)
	assert.InDelta(t, narration.Segments[0].End, narration.Segments[1].Start, 1e-9)
	assert.InDelta(t, 1.0, narration.Segments[1].End, 1e-9)

	// Persisted record is retrievable, with a playable container.
	stored, err := svc.GetNarration(context.Background(), narration.ID)
	require.NoError(t, err)
	assert.Equal(t, narration.ID, stored.ID)

	audio, err := svc.GetNarrationAudio(context.Background(), narration.ID)
	require.NoError(t, err)
	assert.Equal(t, wav.HeaderSize+48000, len(audio))

	assert.Equal(t, []sse.EventType{sse.EventGenerationStarted, sse.EventGenerationCompleted}, emitter.types())
}

func TestGenerateSegmentationFailureIsAllOrNothing(t *testing.T) {
	seg := &stubSegmenter{err: assert.AnError}
	syn := &stubSynthesizer{pcm: make([]byte, 48000)}
	emitter := &recordingEmitter{}

	svc := newTestNarrationService(t, seg, syn, stubCredential{true}, emitter)

	narration, err := svc.Generate(context.Background(), validRequest())
	assert.Nil(t, narration)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrSegmentationFailed))

	// The synthesizer is never reached when segmentation fails.
	assert.Equal(t, 1, seg.calls)
	assert.Equal(t, 0, syn.calls)

	// Nothing was stored.
	narrations, err := svc.ListNarrations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, narrations)

	assert.Equal(t, []sse.EventType{sse.EventGenerationStarted, sse.EventGenerationFailed}, emitter.types())
}

func TestGenerateSynthesisFailureIsAllOrNothing(t *testing.T) {
	seg := &stubSegmenter{pairs: []gemini.SegmentPair{{Source: "Hi.", Translated: "Hola."}}}
	syn := &stubSynthesizer{err: assert.AnError}

	svc := newTestNarrationService(t, seg, syn, stubCredential{true}, nil)

	narration, err := svc.Generate(context.Background(), validRequest())
	assert.Nil(t, narration)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrSynthesisFailed))
	assert.False(t, apperrors.Is(err, apperrors.ErrSegmentationFailed),
		"synthesis failures must be distinguishable from segmentation failures")

	narrations, err := svc.ListNarrations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, narrations)
}

func TestGenerateEmptySegmentsFails(t *testing.T) {
	seg := &stubSegmenter{pairs: nil}
	syn := &stubSynthesizer{pcm: make([]byte, 48000)}

	svc := newTestNarrationService(t, seg, syn, stubCredential{true}, nil)

	_, err := svc.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrSegmentationFailed))
	assert.Equal(t, 0, syn.calls)
}

func TestGenerateMissingCredential(t *testing.T) {
	seg := &stubSegmenter{}
	syn := &stubSynthesizer{}

	svc := newTestNarrationService(t, seg, syn, stubCredential{false}, nil)

	_, err := svc.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrMissingCredential))
	assert.Equal(t, 0, seg.calls)
	assert.Equal(t, 0, syn.calls)
}

func TestGenerateValidation(t *testing.T) {
	svc := newTestNarrationService(t, &stubSegmenter{}, &stubSynthesizer{}, stubCredential{true}, nil)

	tests := []struct {
		name string
		req  GenerateRequest
	}{
		{"empty text", GenerateRequest{SourceLanguage: "en", VoiceID: "kore"}},
		{"empty language", GenerateRequest{Text: "hi", VoiceID: "kore"}},
		{"empty voice", GenerateRequest{Text: "hi", SourceLanguage: "en"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
		})
	}
}

func TestGenerateRejectsUnknownLanguageAndVoice(t *testing.T) {
	svc := newTestNarrationService(t, &stubSegmenter{}, &stubSynthesizer{}, stubCredential{true}, nil)

	req := validRequest()
	req.SourceLanguage = "fr"
	_, err := svc.Generate(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	req = validRequest()
	req.VoiceID = "nonexistent"
	_, err = svc.Generate(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestGenerateSingleFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	seg := &blockingSegmenter{started: started, release: release}
	syn := &stubSynthesizer{pcm: make([]byte, 48000)}

	svc := newTestNarrationService(t, seg, syn, stubCredential{true}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Generate(context.Background(), validRequest())
		done <- err
	}()

	<-started

	// Second request while the first is in flight gets a conflict.
	_, err := svc.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	close(release)
	require.NoError(t, <-done)

	// Gate is released after completion.
	_, err = svc.Generate(context.Background(), validRequest())
	assert.NoError(t, err)
}

// blockingSegmenter blocks in TranslateSegments until released, to hold a
// generation in flight.
type blockingSegmenter struct {
	started chan struct{}
	release chan struct{}
	once    bool
}

func (b *blockingSegmenter) TranslateSegments(_ context.Context, _ string, _, _ domain.Language) ([]gemini.SegmentPair, error) {
	if !b.once {
		b.once = true
		close(b.started)
		<-b.release
	}
	return []gemini.SegmentPair{{Source: "Hi.", Translated: "Hola."}}, nil
}

func TestGenerationFailureLeavesPlaybackUntouched(t *testing.T) {
	st := testStore(t)
	playback := NewPlaybackService(st, NoopEmitter{}, discardLogger())

	seg := &stubSegmenter{err: assert.AnError}
	svc := NewNarrationService(st, seg, &stubSynthesizer{}, stubCredential{true}, NoopEmitter{}, 24000, discardLogger())

	_, err := svc.Generate(context.Background(), validRequest())
	require.Error(t, err)

	state := playback.State()
	assert.Equal(t, domain.PlaybackEmpty, state.Status)
	assert.Empty(t, state.NarrationID)
}

func TestDeleteNarration(t *testing.T) {
	seg := &stubSegmenter{pairs: []gemini.SegmentPair{{Source: "Hi.", Translated: "Hola."}}}
	syn := &stubSynthesizer{pcm: make([]byte, 4800)}

	svc := newTestNarrationService(t, seg, syn, stubCredential{true}, nil)

	narration, err := svc.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNarration(context.Background(), narration.ID))

	_, err = svc.GetNarration(context.Background(), narration.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	err = svc.DeleteNarration(context.Background(), narration.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
