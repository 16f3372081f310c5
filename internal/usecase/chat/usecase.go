package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/futig/chatbot-backend/internal/entity"
	"github.com/futig/chatbot-backend/internal/session"
)

// AssistantTag prefixes every answer the orchestrator returns.
const AssistantTag = "AskIDC: "

const (
	emptyInputAnswer = "Please type something."
	apologyAnswer    = "Sorry, something went wrong. Please try again."

	notFoundFmt = "For '%s': Sorry, I couldn't find anything."
	degradedFmt = "For '%s': (generation failed) Showing top result.\n%s"
)

type Config struct {
	SearchK      int
	TopN         int
	HistoryLimit int
	Predefined   map[string]string
}

type Usecase struct {
	normalizer Normalizer
	retriever  Retriever
	generator  Generator
	sessions   Sessions
	log        ConversationLog
	cfg        Config
	logger     *zap.Logger
}

func NewUsecase(
	normalizer Normalizer,
	retriever Retriever,
	generator Generator,
	sessions Sessions,
	log ConversationLog,
	cfg Config,
	logger *zap.Logger,
) *Usecase {
	predefined := make(map[string]string, len(cfg.Predefined))
	for q, a := range cfg.Predefined {
		predefined[strings.ToLower(q)] = a
	}
	cfg.Predefined = predefined

	return &Usecase{
		normalizer: normalizer,
		retriever:  retriever,
		generator:  generator,
		sessions:   sessions,
		log:        log,
		cfg:        cfg,
		logger:     logger,
	}
}

// Ask runs one conversational turn. It never returns an error for
// per-turn failures: every collaborator problem degrades into a textual
// answer. The only error is an unknown session.
func (u *Usecase) Ask(ctx context.Context, sessionID, query string) (answer string, err error) {
	sess, err := u.sessions.Get(sessionID)
	if err != nil {
		return "", fmt.Errorf("get session %s: %w", sessionID, err)
	}

	defer func() {
		if r := recover(); r != nil {
			u.logger.Error("recovered in ask",
				zap.String("session_id", sessionID),
				zap.Any("panic", r),
			)
			answer = AssistantTag + apologyAnswer
			err = nil
		}
	}()

	query = strings.TrimSpace(query)
	if query == "" {
		return AssistantTag + emptyInputAnswer, nil
	}

	normalized := u.normalizer.Normalize(query)
	if !strings.EqualFold(normalized, query) {
		u.logger.Info("query normalized",
			zap.String("original", query),
			zap.String("normalized", normalized),
		)
	}

	if canned, ok := u.cfg.Predefined[strings.ToLower(normalized)]; ok {
		u.recordTurn(ctx, sess, sessionID, normalized, canned)
		return AssistantTag + canned, nil
	}

	history := sess.Recent(u.cfg.HistoryLimit)

	subquestions := Decompose(normalized)
	answers := make([]string, 0, len(subquestions))
	for _, sq := range subquestions {
		answers = append(answers, u.answerSubquestion(ctx, history, sq))
	}

	final := strings.Join(answers, "\n\n")
	u.recordTurn(ctx, sess, sessionID, normalized, final)
	return AssistantTag + final, nil
}

// History returns every turn of the session, oldest first. When the
// in-memory session has expired but a conversation log is configured,
// the persisted turns are served instead.
func (u *Usecase) History(ctx context.Context, sessionID string) ([]entity.Turn, error) {
	sess, err := u.sessions.Get(sessionID)
	if err == nil {
		return sess.Recent(sess.Len()), nil
	}
	if u.log == nil || !errors.Is(err, entity.ErrSessionNotFound) {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}

	turns, logErr := u.log.GetSessionMessages(ctx, sessionID)
	if logErr != nil {
		u.logger.Warn("read conversation log", zap.String("session_id", sessionID), zap.Error(logErr))
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	if len(turns) == 0 {
		return nil, fmt.Errorf("get session %s: %w", sessionID, entity.ErrSessionNotFound)
	}
	return turns, nil
}

func (u *Usecase) answerSubquestion(ctx context.Context, history []entity.Turn, sq string) string {
	candidates, err := u.retriever.Retrieve(ctx, sq, u.cfg.SearchK, u.cfg.TopN)
	if err != nil {
		if !errors.Is(err, entity.ErrNoResults) {
			u.logger.Warn("retrieval failed", zap.String("subquestion", sq), zap.Error(err))
		}
		return fmt.Sprintf(notFoundFmt, sq)
	}

	prompt := buildPrompt(history, candidates, sq)
	generated, err := u.generator.Generate(ctx, prompt)
	if err != nil {
		u.logger.Warn("generation failed, degrading to top passage",
			zap.String("subquestion", sq),
			zap.Error(err),
		)
		return fmt.Sprintf(degradedFmt, sq, candidates[0].Chunk.Text)
	}
	return generated
}

// recordTurn appends the turn pair to the in-memory session and, when a
// conversation log is configured, to persistent storage. Log failures
// never fail the answer.
func (u *Usecase) recordTurn(ctx context.Context, sess *session.Session, sessionID, query, answer string) {
	sess.Append(entity.RoleUser, query)
	sess.Append(entity.RoleAssistant, answer)

	if u.log == nil {
		return
	}
	if err := u.log.AppendMessage(ctx, sessionID, entity.RoleUser, query); err != nil {
		u.logger.Warn("persist user turn", zap.String("session_id", sessionID), zap.Error(err))
	}
	if err := u.log.AppendMessage(ctx, sessionID, entity.RoleAssistant, answer); err != nil {
		u.logger.Warn("persist assistant turn", zap.String("session_id", sessionID), zap.Error(err))
	}
}
