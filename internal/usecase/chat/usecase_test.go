package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/chatbot-backend/internal/entity"
	"github.com/futig/chatbot-backend/internal/session"
)

type identityNormalizer struct{}

func (identityNormalizer) Normalize(q string) string { return q }

type mapNormalizer map[string]string

func (m mapNormalizer) Normalize(q string) string {
	if v, ok := m[q]; ok {
		return v
	}
	return q
}

type stubRetriever struct {
	calls []string
	fn    func(query string) ([]entity.Candidate, error)
}

func (s *stubRetriever) Retrieve(_ context.Context, query string, k, topN int) ([]entity.Candidate, error) {
	s.calls = append(s.calls, query)
	return s.fn(query)
}

type stubGenerator struct {
	prompts []string
	fn      func(prompt string) (string, error)
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.fn(prompt)
}

type stubLog struct {
	appended []entity.Turn
	stored   []entity.Turn
	err      error
	getErr   error
}

func (s *stubLog) AppendMessage(_ context.Context, _ string, role entity.Role, text string) error {
	s.appended = append(s.appended, entity.Turn{Role: role, Text: text})
	return s.err
}

func (s *stubLog) GetSessionMessages(_ context.Context, _ string) ([]entity.Turn, error) {
	return s.stored, s.getErr
}

func candidatesFor(texts ...string) []entity.Candidate {
	out := make([]entity.Candidate, 0, len(texts))
	for i, text := range texts {
		out = append(out, entity.Candidate{
			Chunk:    entity.Chunk{ID: fmt.Sprintf("c%d", i), Text: text},
			Combined: 1 - float64(i)*0.1,
		})
	}
	return out
}

type fixture struct {
	uc        *Usecase
	sessions  *session.Manager
	retriever *stubRetriever
	generator *stubGenerator
	log       *stubLog
	sessionID string
}

func newFixture(t *testing.T, normalizer Normalizer) *fixture {
	t.Helper()

	retriever := &stubRetriever{fn: func(string) ([]entity.Candidate, error) {
		return candidatesFor("default passage"), nil
	}}
	generator := &stubGenerator{fn: func(string) (string, error) {
		return "generated answer", nil
	}}
	log := &stubLog{}
	sessions := session.NewManager(time.Minute)

	uc := NewUsecase(normalizer, retriever, generator, sessions, log, Config{
		SearchK:      5,
		TopN:         3,
		HistoryLimit: 10,
		Predefined: map[string]string{
			"Who are you": "I am the support assistant.",
		},
	}, zap.NewNop())

	return &fixture{
		uc:        uc,
		sessions:  sessions,
		retriever: retriever,
		generator: generator,
		log:       log,
		sessionID: sessions.Create().ID(),
	}
}

func (f *fixture) turns(t *testing.T) []entity.Turn {
	t.Helper()
	sess, err := f.sessions.Get(f.sessionID)
	require.NoError(t, err)
	return sess.Recent(0)
}

func TestAsk_EmptyInput(t *testing.T) {
	t.Parallel()

	f := newFixture(t, identityNormalizer{})

	answer, err := f.uc.Ask(context.Background(), f.sessionID, "   ")
	require.NoError(t, err)

	assert.Equal(t, "AskIDC: Please type something.", answer)
	assert.Empty(t, f.turns(t), "empty input must not touch conversation state")
	assert.Empty(t, f.retriever.calls)
}

func TestAsk_UnknownSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t, identityNormalizer{})

	_, err := f.uc.Ask(context.Background(), "11111111-2222-3333-4444-555555555555", "hello")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestAsk_PredefinedAnswer(t *testing.T) {
	t.Parallel()

	f := newFixture(t, identityNormalizer{})

	answer, err := f.uc.Ask(context.Background(), f.sessionID, "WHO ARE YOU")
	require.NoError(t, err)

	assert.Equal(t, "AskIDC: I am the support assistant.", answer)
	assert.Empty(t, f.retriever.calls, "canned answers bypass retrieval")
	assert.Empty(t, f.generator.prompts, "canned answers bypass generation")

	turns := f.turns(t)
	require.Len(t, turns, 2, "turn pair appended exactly once")
	assert.Equal(t, entity.RoleUser, turns[0].Role)
	assert.Equal(t, "WHO ARE YOU", turns[0].Text)
	assert.Equal(t, entity.RoleAssistant, turns[1].Role)
	assert.Equal(t, "I am the support assistant.", turns[1].Text)
}

func TestAsk_GeneratedAnswer(t *testing.T) {
	t.Parallel()

	f := newFixture(t, identityNormalizer{})

	answer, err := f.uc.Ask(context.Background(), f.sessionID, "tell me about staffing")
	require.NoError(t, err)

	assert.Equal(t, "AskIDC: generated answer", answer)
	assert.Equal(t, []string{"tell me about staffing"}, f.retriever.calls)

	require.Len(t, f.generator.prompts, 1)
	prompt := f.generator.prompts[0]
	assert.Contains(t, prompt, "default passage")
	assert.Contains(t, prompt, `Question: "tell me about staffing"`)
}

func TestAsk_NormalizedQueryDrivesRetrieval(t *testing.T) {
	t.Parallel()

	f := newFixture(t, mapNormalizer{"stafing servises": "staffing services"})

	_, err := f.uc.Ask(context.Background(), f.sessionID, "stafing servises")
	require.NoError(t, err)

	assert.Equal(t, []string{"staffing services"}, f.retriever.calls)

	// The corrected query is what lands in conversation state and in the
	// persistent log, so later prompts see corrected text.
	turns := f.turns(t)
	require.NotEmpty(t, turns)
	assert.Equal(t, "staffing services", turns[0].Text)

	require.NotEmpty(t, f.log.appended)
	assert.Equal(t, "staffing services", f.log.appended[0].Text)
}

func TestAsk_PredefinedAnswerRecordsCorrectedQuery(t *testing.T) {
	t.Parallel()

	f := newFixture(t, mapNormalizer{"who are yuo": "who are you"})

	answer, err := f.uc.Ask(context.Background(), f.sessionID, "who are yuo")
	require.NoError(t, err)
	assert.Equal(t, "AskIDC: I am the support assistant.", answer)

	turns := f.turns(t)
	require.Len(t, turns, 2)
	assert.Equal(t, "who are you", turns[0].Text)
}

func TestAsk_RetrievalEmpty(t *testing.T) {
	t.Parallel()

	f := newFixture(t, identityNormalizer{})
	f.retriever.fn = func(string) ([]entity.Candidate, error) {
		return nil, entity.ErrNoResults
	}

	answer, err := f.uc.Ask(context.Background(), f.sessionID, "unknown topic")
	require.NoError(t, err)

	assert.Equal(t, "AskIDC: For 'unknown topic': Sorry, I couldn't find anything.", answer)
	assert.Empty(t, f.generator.prompts, "nothing to generate from")

	require.Len(t, f.turns(t), 2, "failed retrieval still records the turn")
}

func TestAsk_GeneratorFailureDegradesToTopPassage(t *testing.T) {
	t.Parallel()

	f := newFixture(t, identityNormalizer{})
	f.retriever.fn = func(string) ([]entity.Candidate, error) {
		return candidatesFor("best passage text", "second passage"), nil
	}
	f.generator.fn = func(string) (string, error) {
		return "", errors.New("quota exceeded")
	}

	answer, err := f.uc.Ask(context.Background(), f.sessionID, "what services")
	require.NoError(t, err, "generator failures never propagate")

	assert.Contains(t, answer, "(generation failed)")
	assert.Contains(t, answer, "best passage text")
	assert.NotContains(t, answer, "quota exceeded", "raw error stays out of the answer")
}

func TestAsk_MultipleSubquestions(t *testing.T) {
	t.Parallel()

	f := newFixture(t, identityNormalizer{})
	f.generator.fn = func(prompt string) (string, error) {
		return fmt.Sprintf("answer %d", len(f.generator.prompts)), nil
	}

	answer, err := f.uc.Ask(context.Background(), f.sessionID, "What do you do, and who is your CEO?")
	require.NoError(t, err)

	assert.Equal(t, []string{"What do you do", "who is your CEO"}, f.retriever.calls)
	assert.Equal(t, "AskIDC: answer 1\n\nanswer 2", answer)

	turns := f.turns(t)
	require.Len(t, turns, 2, "one pair for the whole query, not per subquestion")
	assert.Equal(t, "What do you do, and who is your CEO?", turns[0].Text)
	assert.Equal(t, "answer 1\n\nanswer 2", turns[1].Text)
}

func TestAsk_MixedResultsJoined(t *testing.T) {
	t.Parallel()

	f := newFixture(t, identityNormalizer{})
	f.retriever.fn = func(query string) ([]entity.Candidate, error) {
		if query == "who is your CEO" {
			return nil, entity.ErrNoResults
		}
		return candidatesFor("services passage"), nil
	}

	answer, err := f.uc.Ask(context.Background(), f.sessionID, "What do you do, and who is your CEO?")
	require.NoError(t, err)

	assert.Equal(t, "AskIDC: generated answer\n\nFor 'who is your CEO': Sorry, I couldn't find anything.", answer)
}

func TestAsk_PanicRecoveredIntoApology(t *testing.T) {
	t.Parallel()

	f := newFixture(t, identityNormalizer{})
	f.retriever.fn = func(string) ([]entity.Candidate, error) {
		panic("boom")
	}

	answer, err := f.uc.Ask(context.Background(), f.sessionID, "anything")
	require.NoError(t, err)

	assert.Equal(t, "AskIDC: Sorry, something went wrong. Please try again.", answer)
}

func TestAsk_PersistsTurnsToConversationLog(t *testing.T) {
	t.Parallel()

	f := newFixture(t, identityNormalizer{})

	_, err := f.uc.Ask(context.Background(), f.sessionID, "tell me more")
	require.NoError(t, err)

	require.Len(t, f.log.appended, 2)
	assert.Equal(t, entity.RoleUser, f.log.appended[0].Role)
	assert.Equal(t, "tell me more", f.log.appended[0].Text)
	assert.Equal(t, entity.RoleAssistant, f.log.appended[1].Role)
}

func TestAsk_ConversationLogFailureIsBestEffort(t *testing.T) {
	t.Parallel()

	f := newFixture(t, identityNormalizer{})
	f.log.err = errors.New("db down")

	answer, err := f.uc.Ask(context.Background(), f.sessionID, "tell me more")
	require.NoError(t, err)
	assert.Equal(t, "AskIDC: generated answer", answer)

	require.Len(t, f.turns(t), 2, "in-memory state still updated")
}

func TestAsk_PromptCarriesRecentHistory(t *testing.T) {
	t.Parallel()

	f := newFixture(t, identityNormalizer{})

	_, err := f.uc.Ask(context.Background(), f.sessionID, "first question please")
	require.NoError(t, err)
	_, err = f.uc.Ask(context.Background(), f.sessionID, "second question please")
	require.NoError(t, err)

	require.Len(t, f.generator.prompts, 2)
	assert.NotContains(t, f.generator.prompts[0], "User:")
	assert.Contains(t, f.generator.prompts[1], "User: first question please")
	assert.Contains(t, f.generator.prompts[1], "Assistant: generated answer")
}

func TestHistory(t *testing.T) {
	t.Parallel()

	f := newFixture(t, identityNormalizer{})

	_, err := f.uc.Ask(context.Background(), f.sessionID, "tell me about staffing")
	require.NoError(t, err)

	turns, err := f.uc.History(context.Background(), f.sessionID)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "tell me about staffing", turns[0].Text)

	_, err = f.uc.History(context.Background(), "11111111-2222-3333-4444-555555555555")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestHistory_ExpiredSessionServedFromConversationLog(t *testing.T) {
	t.Parallel()

	f := newFixture(t, identityNormalizer{})
	f.log.stored = []entity.Turn{
		{Role: entity.RoleUser, Text: "what services do you offer"},
		{Role: entity.RoleAssistant, Text: "generated answer"},
	}

	turns, err := f.uc.History(context.Background(), "11111111-2222-3333-4444-555555555555")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "what services do you offer", turns[0].Text)

	f.log.getErr = errors.New("db down")
	_, err = f.uc.History(context.Background(), "11111111-2222-3333-4444-555555555555")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound, "log failures do not invent sessions")
}
