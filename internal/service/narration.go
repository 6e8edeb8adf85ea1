package service

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/narravoapp/narravo-server/internal/align"
	"github.com/narravoapp/narravo-server/internal/domain"
	apperrors "github.com/narravoapp/narravo-server/internal/errors"
	"github.com/narravoapp/narravo-server/internal/id"
	"github.com/narravoapp/narravo-server/internal/sse"
	"github.com/narravoapp/narravo-server/internal/store"
	"github.com/narravoapp/narravo-server/internal/wav"
)

// NarrationService orchestrates one complete generation as a single unit of
// work: translate-and-segment, synthesize, frame into a WAV container, align
// the subtitle timeline, persist. All-or-nothing - a failure in either remote
// call aborts the whole request and nothing is stored.
type NarrationService struct {
	store       *store.Store
	segmenter   Segmenter
	synthesizer Synthesizer
	credential  CredentialSource
	events      EventEmitter
	logger      *slog.Logger
	sampleRate  int

	// generating gates the single in-flight generation. The two remote
	// calls are sequential and slow; concurrent requests get a conflict
	// instead of queueing.
	generating atomic.Bool
}

// NewNarrationService creates a new narration service.
func NewNarrationService(
	store *store.Store,
	segmenter Segmenter,
	synthesizer Synthesizer,
	credential CredentialSource,
	events EventEmitter,
	sampleRate int,
	logger *slog.Logger,
) *NarrationService {
	return &NarrationService{
		store:       store,
		segmenter:   segmenter,
		synthesizer: synthesizer,
		credential:  credential,
		events:      events,
		logger:      logger,
		sampleRate:  sampleRate,
	}
}

// GenerateRequest contains the data for one generation.
type GenerateRequest struct {
	Text           string `json:"text" validate:"required"`
	SourceLanguage string `json:"source_language" validate:"required"`
	VoiceID        string `json:"voice_id" validate:"required"`
}

// Generate runs one complete generation and returns the persisted narration.
func (s *NarrationService) Generate(ctx context.Context, req GenerateRequest) (*domain.Narration, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	source := domain.LanguageByTag(req.SourceLanguage)
	if source == nil {
		return nil, apperrors.Validationf("unsupported source language: %s", req.SourceLanguage)
	}
	target := domain.TargetLanguage(*source)

	voice := domain.VoiceByID(req.VoiceID)
	if voice == nil {
		return nil, apperrors.Validationf("unknown voice: %s", req.VoiceID)
	}

	if !s.credential.Configured() {
		return nil, apperrors.MissingCredential("no API key configured, set GEMINI_API_KEY")
	}

	// One generation at a time. The UI disables the generate control while a
	// request is outstanding; this is the server-side enforcement.
	if !s.generating.CompareAndSwap(false, true) {
		return nil, apperrors.Conflict("a generation is already in progress")
	}
	defer s.generating.Store(false)

	started := time.Now()
	s.logger.Info("Generation started",
		"source", source.Tag, "target", target.Tag, "voice", voice.ID, "chars", len(req.Text))
	s.events.Emit(sse.NewEvent(sse.EventGenerationStarted, sse.GenerationStartedData{
		SourceLanguage: source.Tag,
		VoiceID:        voice.ID,
	}))

	narration, err := s.generate(ctx, req.Text, *source, target, *voice)
	if err != nil {
		s.logger.Error("Generation failed", "error", err)
		s.emitFailure(err)
		return nil, err
	}

	s.logger.Info("Generation complete",
		"narration_id", narration.ID,
		"segments", len(narration.Segments),
		"duration_s", narration.Duration,
		"elapsed", time.Since(started))
	s.events.Emit(sse.NewEvent(sse.EventGenerationCompleted, sse.GenerationCompletedData{
		Narration: narration,
	}))
	return narration, nil
}

// generate performs the two sequential remote calls and assembles the result.
func (s *NarrationService) generate(ctx context.Context, text string, source, target domain.Language, voice domain.Voice) (*domain.Narration, error) {
	// Step 1: translate and segment.
	pairs, err := s.segmenter.TranslateSegments(ctx, text, source, target)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSegmentationFailed, "translation failed")
	}
	if len(pairs) == 0 {
		return nil, apperrors.SegmentationFailed("translation returned no segments")
	}

	segments := make([]domain.Segment, len(pairs))
	sources := make([]string, len(pairs))
	for i, pair := range pairs {
		segments[i] = domain.Segment{
			Index:      i,
			Source:     pair.Source,
			Translated: pair.Translated,
		}
		sources[i] = pair.Source
	}

	// Step 2: synthesize from the reconstructed segment text, not the raw
	// input. The spoken audio then corresponds exactly to the text the
	// aligner divides, regardless of whitespace quirks in the user input.
	spoken := strings.Join(sources, " ")

	pcm, err := s.synthesizer.Synthesize(ctx, spoken, voice.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSynthesisFailed, "speech synthesis failed")
	}
	if len(pcm) == 0 {
		return nil, apperrors.SynthesisFailed("speech synthesis returned no audio")
	}

	// Frame the raw PCM so it is playable, then derive the duration the
	// aligner needs from the payload itself.
	container := wav.Encode(pcm, s.sampleRate)
	duration := wav.Duration(len(pcm), s.sampleRate)

	// Align exactly once, now that the duration is known and positive.
	if duration > 0 && !domain.Aligned(segments) {
		segments = align.Align(segments, duration)
	}

	narrationID, err := id.Generate("nar")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "generate narration ID")
	}

	narration := &domain.Narration{
		ID:             narrationID,
		InputText:      text,
		SourceLanguage: source.Tag,
		TargetLanguage: target.Tag,
		VoiceID:        voice.ID,
		Segments:       segments,
		SampleRate:     s.sampleRate,
		Duration:       duration,
		AudioSize:      int64(len(container)),
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.store.CreateNarration(ctx, narration, container); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "store narration")
	}

	return narration, nil
}

// emitFailure broadcasts a generation.failed event with the domain code.
func (s *NarrationService) emitFailure(err error) {
	code := apperrors.CodeInternal
	var domainErr *apperrors.Error
	if apperrors.As(err, &domainErr) {
		code = domainErr.Code
	}
	s.events.Emit(sse.NewEvent(sse.EventGenerationFailed, sse.GenerationFailedData{
		Code:    string(code),
		Message: err.Error(),
	}))
}

// GetNarration retrieves a narration record by ID.
func (s *NarrationService) GetNarration(ctx context.Context, narrationID string) (*domain.Narration, error) {
	return s.store.GetNarration(ctx, narrationID)
}

// GetNarrationAudio retrieves the WAV payload for a narration.
func (s *NarrationService) GetNarrationAudio(ctx context.Context, narrationID string) ([]byte, error) {
	return s.store.GetNarrationAudio(ctx, narrationID)
}

// ListNarrations returns all stored narrations, newest first.
func (s *NarrationService) ListNarrations(ctx context.Context) ([]*domain.Narration, error) {
	return s.store.ListNarrations(ctx)
}

// DeleteNarration removes a narration and its audio payload.
func (s *NarrationService) DeleteNarration(ctx context.Context, narrationID string) error {
	if err := s.store.DeleteNarration(ctx, narrationID); err != nil {
		return err
	}
	s.logger.Info("Narration deleted", "narration_id", narrationID)
	return nil
}
