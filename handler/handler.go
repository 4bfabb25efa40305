package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"restaurant-chatbot/internal/domain"
	"restaurant-chatbot/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
	Transcript() []domain.Turn
}

type Handler struct {
	uc ChatUseCase
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply    string `json:"reply"`
	Intent   string `json:"intent,omitempty"`
	Rejected bool   `json:"rejected"`
}

type turnResponse struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	At      string `json:"at"`
}

type transcriptResponse struct {
	Turns []turnResponse `json:"turns"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewHandler(uc ChatUseCase) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	return &Handler{uc: uc}, nil
}

// Handle serves POST /chat and GET /transcript behind API Gateway.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := headerValue(req.Headers, correlationHeader)
	if corrID == "" {
		corrID = uuid.NewString()
	}
	logger := slog.With("correlation_id", corrID, "method", req.HTTPMethod, "path", req.Path)

	switch {
	case strings.HasSuffix(req.Path, "/chat"):
		if req.HTTPMethod != http.MethodPost {
			return errorJSON(corrID, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "use POST"), nil
		}
		return h.chat(ctx, logger, corrID, req.Body), nil
	case strings.HasSuffix(req.Path, "/transcript"):
		if req.HTTPMethod != http.MethodGet {
			return errorJSON(corrID, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "use GET"), nil
		}
		return h.transcript(corrID), nil
	default:
		return errorJSON(corrID, http.StatusNotFound, "NOT_FOUND", "unknown route"), nil
	}
}

func (h *Handler) chat(ctx context.Context, logger *slog.Logger, corrID, body string) events.APIGatewayProxyResponse {
	var in chatRequest
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		logger.Warn("invalid request body", "err", err)
		return errorJSON(corrID, http.StatusBadRequest, string(usecase.ErrorInvalidInput), "request body must be JSON")
	}

	start := time.Now()
	out, err := h.uc.Chat(ctx, usecase.ChatInput{Message: in.Message})
	if err != nil {
		status, code, msg := mapError(err)
		logger.Warn("chat failed", "err", err, "status", status)
		return errorJSON(corrID, status, code, msg)
	}
	logger.Info("chat handled", "intent", out.Intent, "rejected", out.Rejected, "duration_ms", time.Since(start).Milliseconds())

	return writeJSON(corrID, http.StatusOK, chatResponse{
		Reply:    out.Reply,
		Intent:   out.Intent,
		Rejected: out.Rejected,
	})
}

func (h *Handler) transcript(corrID string) events.APIGatewayProxyResponse {
	turns := h.uc.Transcript()
	resp := transcriptResponse{Turns: make([]turnResponse, 0, len(turns))}
	for _, t := range turns {
		resp.Turns = append(resp.Turns, turnResponse{
			Speaker: string(t.Speaker),
			Text:    t.Text,
			At:      t.At.UTC().Format(time.RFC3339),
		})
	}
	return writeJSON(corrID, http.StatusOK, resp)
}

func mapError(err error) (int, string, string) {
	var ue *usecase.Error
	if !errors.As(err, &ue) {
		return http.StatusInternalServerError, string(usecase.ErrorInternal), "internal error"
	}
	switch ue.Code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest, string(ue.Code), ue.Reason
	default:
		return http.StatusInternalServerError, string(usecase.ErrorInternal), "internal error"
	}
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func writeJSON(corrID string, status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json", correlationHeader: corrID},
			Body:       `{"error":"INTERNAL_ERROR","message":"internal error"}`,
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json", correlationHeader: corrID},
		Body:       string(body),
	}
}

func errorJSON(corrID string, status int, code, msg string) events.APIGatewayProxyResponse {
	return writeJSON(corrID, status, errorResponse{Error: code, Message: msg})
}
