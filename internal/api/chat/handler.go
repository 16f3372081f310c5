package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/chatbot-backend/internal/entity"
	"github.com/futig/chatbot-backend/internal/pkg/logger"
	"github.com/futig/chatbot-backend/internal/pkg/response"
	"github.com/futig/chatbot-backend/internal/pkg/validator"
)

type Handler struct {
	usecase   ChatUsecase
	sessions  SessionManager
	validator *validator.Validator
}

func NewHandler(usecase ChatUsecase, sessions SessionManager, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		sessions:  sessions,
		validator: validator,
	}
}

// CreateSession handles POST /chat/sessions - Open a new conversation
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateSession")

	id := h.sessions.Create().ID()

	ctxzap.Info(ctx, "session created", zap.String("session_id", id))
	h.respondJSON(w, http.StatusCreated, entity.CreateSessionResponse{SessionID: id})
}

// Ask handles POST /chat/ask - Run one conversational turn
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Ask")

	var req entity.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateAsk(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	ctx = logger.AddFields(ctx, zap.String("session_id", req.SessionID))
	ctxzap.Info(ctx, "processing query", zap.Int("query_len", len(req.Query)))

	answer, err := h.usecase.Ask(ctx, req.SessionID, req.Query)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, entity.AskResponse{Answer: answer})
}

// GetHistory handles GET /chat/sessions/{id}/history - List retained turns
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("session_id", sessionID),
		zap.String("action", "GetHistory"),
	)

	if err := h.validator.ValidateSessionID(sessionID); err != nil {
		ctxzap.Error(ctx, "failed to validate session id", zap.Error(err))
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	ctxzap.Debug(ctx, "fetching session history")

	turns, err := h.usecase.History(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toHistoryResponse(sessionID, turns))
}

// Helper methods
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	response.JSON(w, status, data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	response.JSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, entity.ErrSessionNotFound) {
		h.respondError(ctx, w, http.StatusNotFound, "session not found", err)
	} else if errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrMissingField) {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	} else {
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
