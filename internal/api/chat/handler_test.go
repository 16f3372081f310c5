package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/chatbot-backend/internal/config"
	"github.com/futig/chatbot-backend/internal/entity"
	"github.com/futig/chatbot-backend/internal/pkg/validator"
	"github.com/futig/chatbot-backend/internal/session"
)

type stubUsecase struct {
	askFn     func(sessionID, query string) (string, error)
	historyFn func(sessionID string) ([]entity.Turn, error)
}

func (s *stubUsecase) Ask(_ context.Context, sessionID, query string) (string, error) {
	return s.askFn(sessionID, query)
}

func (s *stubUsecase) History(_ context.Context, sessionID string) ([]entity.Turn, error) {
	return s.historyFn(sessionID)
}

func newTestRouter(uc ChatUsecase, sessions SessionManager) http.Handler {
	v := validator.NewChatValidator(config.ChatConfig{MaxQueryLength: 100})
	h := NewHandler(uc, sessions, v)
	r := chi.NewRouter()
	RegisterRoutes(r, h)
	return r
}

func TestCreateSession(t *testing.T) {
	t.Parallel()

	sessions := session.NewManager(time.Minute)
	router := newTestRouter(&stubUsecase{}, sessions)

	req := httptest.NewRequest(http.MethodPost, "/chat/sessions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp entity.CreateSessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotEmpty(t, resp.SessionID)

	_, err := sessions.Get(resp.SessionID)
	assert.NoError(t, err, "returned ID resolves to a live session")
}

func TestAskEndpoint(t *testing.T) {
	t.Parallel()

	sessions := session.NewManager(time.Minute)
	sessionID := sessions.Create().ID()

	uc := &stubUsecase{askFn: func(id, query string) (string, error) {
		assert.Equal(t, sessionID, id)
		assert.Equal(t, "who are you", query)
		return "AskIDC: an answer", nil
	}}
	router := newTestRouter(uc, sessions)

	body := `{"session_id":"` + sessionID + `","query":"who are you"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp entity.AskResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "AskIDC: an answer", resp.Answer)
}

func TestAskEndpoint_Validation(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubUsecase{}, session.NewManager(time.Minute))

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "not json"},
		{"missing session id", `{"query":"hello"}`},
		{"malformed session id", `{"session_id":"not-a-uuid","query":"hello"}`},
		{"query too long", `{"session_id":"11111111-2222-3333-4444-555555555555","query":"` + strings.Repeat("x", 101) + `"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/chat/ask", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAskEndpoint_SessionNotFound(t *testing.T) {
	t.Parallel()

	uc := &stubUsecase{askFn: func(string, string) (string, error) {
		return "", entity.ErrSessionNotFound
	}}
	router := newTestRouter(uc, session.NewManager(time.Minute))

	body := `{"session_id":"11111111-2222-3333-4444-555555555555","query":"hello"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/ask", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetHistory(t *testing.T) {
	t.Parallel()

	uc := &stubUsecase{historyFn: func(string) ([]entity.Turn, error) {
		return []entity.Turn{
			{Role: entity.RoleUser, Text: "hi"},
			{Role: entity.RoleAssistant, Text: "hello"},
		}, nil
	}}
	router := newTestRouter(uc, session.NewManager(time.Minute))

	req := httptest.NewRequest(http.MethodGet,
		"/chat/sessions/11111111-2222-3333-4444-555555555555/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp entity.HistoryResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Turns, 2)
	assert.Equal(t, "user", resp.Turns[0].Role)
	assert.Equal(t, "hi", resp.Turns[0].Text)
}

func TestGetHistory_InvalidID(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubUsecase{}, session.NewManager(time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/chat/sessions/not-a-uuid/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
