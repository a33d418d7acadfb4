package controllers

import (
	"net/http"

	"github.com/agritrust/agritrust-backend/api/responses"
	"github.com/agritrust/agritrust-backend/api/validators"
	"github.com/agritrust/agritrust-backend/internal/assistant"
	"github.com/agritrust/agritrust-backend/pkg/logger"
)

type assistantRequest struct {
	Question string `json:"question" validate:"required,min=2,max=500"`
}

// AskAssistant answers marketplace how-to questions.
func AskAssistant(svc assistant.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assistantRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		answer, err := svc.Ask(r.Context(), req.Question)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, answer)
	}
}

// AssistantTopics lists the help topics the assistant can answer.
func AssistantTopics(svc assistant.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"topics": svc.Topics(r.Context())})
	}
}
