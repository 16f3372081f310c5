// Package repl runs the line-oriented conversational loop on standard
// input and output.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/futig/chatbot-backend/internal/session"
)

const (
	greeting = "AskIDC Chatbot is ready! Type your query or 'exit' to quit."
	farewell = "Goodbye!"
)

type Asker interface {
	Ask(ctx context.Context, sessionID, query string) (string, error)
}

type SessionManager interface {
	Create() *session.Session
}

type REPL struct {
	asker    Asker
	sessions SessionManager
	in       io.Reader
	out      io.Writer
	logger   *zap.Logger
}

func New(asker Asker, sessions SessionManager, in io.Reader, out io.Writer, logger *zap.Logger) *REPL {
	return &REPL{
		asker:    asker,
		sessions: sessions,
		in:       in,
		out:      out,
		logger:   logger,
	}
}

// Run reads one query per line and prints one answer until the input is
// exhausted, the context is cancelled, or the user types "exit" or
// "quit" (case-insensitive).
func (r *REPL) Run(ctx context.Context) error {
	sessionID := r.sessions.Create().ID()
	r.logger.Info("repl session opened", zap.String("session_id", sessionID))

	fmt.Fprintln(r.out, greeting)

	scanner := bufio.NewScanner(r.in)
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out, farewell)
			return ctx.Err()
		default:
		}

		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "exit", "quit":
			fmt.Fprintln(r.out, farewell)
			return nil
		}

		answer, err := r.asker.Ask(ctx, sessionID, line)
		if err != nil {
			// Only an expired session reaches here; reopen and retry once.
			r.logger.Warn("ask failed, reopening session", zap.Error(err))
			sessionID = r.sessions.Create().ID()
			answer, err = r.asker.Ask(ctx, sessionID, line)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
		}
		fmt.Fprintln(r.out, answer)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	fmt.Fprintln(r.out, farewell)
	return nil
}
