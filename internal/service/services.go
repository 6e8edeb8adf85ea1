// Package service implements the application's business operations: the
// generation orchestrator and the playback controller.
package service

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/narravoapp/narravo-server/internal/domain"
	apperrors "github.com/narravoapp/narravo-server/internal/errors"
	"github.com/narravoapp/narravo-server/internal/gemini"
	"github.com/narravoapp/narravo-server/internal/sse"
)

// Segmenter is the translate-and-segment half of the remote generative API.
type Segmenter interface {
	TranslateSegments(ctx context.Context, text string, source, target domain.Language) ([]gemini.SegmentPair, error)
}

// Synthesizer is the speech synthesis half of the remote generative API.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// CredentialSource reports whether the remote API credential is present.
type CredentialSource interface {
	Configured() bool
}

// EventEmitter broadcasts SSE events. Satisfied by *sse.Manager.
type EventEmitter interface {
	Emit(event sse.Event)
}

// NoopEmitter is a no-op EventEmitter for tests.
type NoopEmitter struct{}

// Emit implements EventEmitter as a no-op.
func (NoopEmitter) Emit(sse.Event) {}

// validate is the shared validator instance for service request structs.
var validate = func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}()

// formatValidationError converts validator errors into a domain validation
// error carrying per-field details.
func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Validation(err.Error())
	}

	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return apperrors.ValidationWithDetails("invalid request", details)
}
