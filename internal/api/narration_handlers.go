package api

import (
	"bytes"
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/narravoapp/narravo-server/internal/domain"
	"github.com/narravoapp/narravo-server/internal/http/response"
	"github.com/narravoapp/narravo-server/internal/service"
)

func (s *Server) registerNarrationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createNarration",
		Method:        http.MethodPost,
		Path:          "/api/v1/narrations",
		Summary:       "Generate narration",
		Description:   "Translates the text, synthesizes speech and stores the result. One generation at a time; concurrent requests get 409.",
		Tags:          []string{"Narrations"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateNarration)

	huma.Register(s.api, huma.Operation{
		OperationID: "listNarrations",
		Method:      http.MethodGet,
		Path:        "/api/v1/narrations",
		Summary:     "List narrations",
		Description: "Returns all stored narrations, newest first",
		Tags:        []string{"Narrations"},
	}, s.handleListNarrations)

	huma.Register(s.api, huma.Operation{
		OperationID: "getNarration",
		Method:      http.MethodGet,
		Path:        "/api/v1/narrations/{id}",
		Summary:     "Get narration",
		Description: "Returns a narration by ID",
		Tags:        []string{"Narrations"},
	}, s.handleGetNarration)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteNarration",
		Method:      http.MethodDelete,
		Path:        "/api/v1/narrations/{id}",
		Summary:     "Delete narration",
		Description: "Deletes a narration and its audio",
		Tags:        []string{"Narrations"},
	}, s.handleDeleteNarration)

	huma.Register(s.api, huma.Operation{
		OperationID: "getActiveSegment",
		Method:      http.MethodGet,
		Path:        "/api/v1/narrations/{id}/active-segment",
		Summary:     "Get active segment",
		Description: "Returns the index of the subtitle segment covering a playback position, -1 if none",
		Tags:        []string{"Narrations"},
	}, s.handleGetActiveSegment)
}

// === DTOs ===

type CreateNarrationRequest struct {
	Text           string `json:"text" doc:"Input text to narrate"`
	SourceLanguage string `json:"source_language" doc:"BCP 47 tag of the input language"`
	VoiceID        string `json:"voice_id" doc:"Synthesis voice ID"`
}

type CreateNarrationInput struct {
	Body CreateNarrationRequest
}

type NarrationOutput struct {
	Body domain.Narration
}

type ListNarrationsResponse struct {
	Narrations []*domain.Narration `json:"narrations" doc:"Stored narrations, newest first"`
}

type ListNarrationsOutput struct {
	Body ListNarrationsResponse
}

type GetNarrationInput struct {
	ID string `path:"id" doc:"Narration ID"`
}

type DeleteNarrationInput struct {
	ID string `path:"id" doc:"Narration ID"`
}

type MessageResponse struct {
	Message string `json:"message" doc:"Result message"`
}

type MessageOutput struct {
	Body MessageResponse
}

type GetActiveSegmentInput struct {
	ID       string  `path:"id" doc:"Narration ID"`
	Position float64 `query:"position" doc:"Playback position in seconds"`
}

type ActiveSegmentResponse struct {
	ActiveSegment int `json:"active_segment" doc:"Segment index covering the position, -1 if none"`
}

type ActiveSegmentOutput struct {
	Body ActiveSegmentResponse
}

// === Handlers ===

func (s *Server) handleCreateNarration(ctx context.Context, input *CreateNarrationInput) (*NarrationOutput, error) {
	narration, err := s.narrations.Generate(ctx, service.GenerateRequest{
		Text:           input.Body.Text,
		SourceLanguage: input.Body.SourceLanguage,
		VoiceID:        input.Body.VoiceID,
	})
	if err != nil {
		return nil, err
	}

	return &NarrationOutput{Body: *narration}, nil
}

func (s *Server) handleListNarrations(ctx context.Context, _ *struct{}) (*ListNarrationsOutput, error) {
	narrations, err := s.narrations.ListNarrations(ctx)
	if err != nil {
		return nil, err
	}

	return &ListNarrationsOutput{Body: ListNarrationsResponse{Narrations: narrations}}, nil
}

func (s *Server) handleGetNarration(ctx context.Context, input *GetNarrationInput) (*NarrationOutput, error) {
	narration, err := s.narrations.GetNarration(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &NarrationOutput{Body: *narration}, nil
}

func (s *Server) handleDeleteNarration(ctx context.Context, input *DeleteNarrationInput) (*MessageOutput, error) {
	if err := s.narrations.DeleteNarration(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Narration deleted"}}, nil
}

func (s *Server) handleGetActiveSegment(ctx context.Context, input *GetActiveSegmentInput) (*ActiveSegmentOutput, error) {
	narration, err := s.narrations.GetNarration(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ActiveSegmentOutput{Body: ActiveSegmentResponse{
		ActiveSegment: narration.ActiveSegmentAt(input.Position),
	}}, nil
}

// handleNarrationAudio serves the WAV artifact. Raw chi handler; the payload
// is a binary download, not JSON.
func (s *Server) handleNarrationAudio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	narration, err := s.narrations.GetNarration(ctx, id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	audio, err := s.narrations.GetNarrationAudio(ctx, id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	// Fixed descriptive filename regardless of narration ID.
	w.Header().Set("Content-Disposition", `attachment; filename="narration.wav"`)

	// ServeContent handles range requests, which browser audio elements use
	// when seeking.
	http.ServeContent(w, r, "narration.wav", narration.CreatedAt, bytes.NewReader(audio))
}
