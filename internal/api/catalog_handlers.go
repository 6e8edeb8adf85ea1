package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/narravoapp/narravo-server/internal/domain"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listVoices",
		Method:      http.MethodGet,
		Path:        "/api/v1/voices",
		Summary:     "List voices",
		Description: "Returns the static synthesis voice catalog",
		Tags:        []string{"Catalog"},
	}, s.handleListVoices)

	huma.Register(s.api, huma.Operation{
		OperationID: "listLanguages",
		Method:      http.MethodGet,
		Path:        "/api/v1/languages",
		Summary:     "List languages",
		Description: "Returns the supported narration language pair",
		Tags:        []string{"Catalog"},
	}, s.handleListLanguages)
}

// === DTOs ===

type ListVoicesResponse struct {
	Voices []domain.Voice `json:"voices" doc:"Available synthesis voices"`
}

type ListVoicesOutput struct {
	Body ListVoicesResponse
}

type ListLanguagesResponse struct {
	Languages []domain.Language `json:"languages" doc:"Supported languages"`
}

type ListLanguagesOutput struct {
	Body ListLanguagesResponse
}

// === Handlers ===

func (s *Server) handleListVoices(_ context.Context, _ *struct{}) (*ListVoicesOutput, error) {
	return &ListVoicesOutput{Body: ListVoicesResponse{Voices: domain.Voices}}, nil
}

func (s *Server) handleListLanguages(_ context.Context, _ *struct{}) (*ListLanguagesOutput, error) {
	return &ListLanguagesOutput{Body: ListLanguagesResponse{Languages: domain.Languages}}, nil
}
