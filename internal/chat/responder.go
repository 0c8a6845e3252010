package chat

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"chesslounge/backend/internal/ai"
	"chesslounge/backend/internal/metrics"
	"chesslounge/backend/internal/models"
	"chesslounge/backend/internal/store"

	"go.uber.org/zap"
)

const (
	systemPrompt   = "You are an AI chatbot in a chess community and answer chess related questions. Use at most 200 words, plain text only, no markdown."
	contextRequest = ` If you do not understand the question it might be because you lack context, for example older messages. In that case reply with the exact phrase "CONTEXT NEEDED".`

	// ContextSentinel is the reply that asks for conversation history.
	ContextSentinel = "CONTEXT NEEDED"

	historySize = 3
	// The newest message is skipped; it is usually the question itself.
	historySkip = 1
)

// Poster posts a message into the room.
type Poster interface {
	Post(ctx context.Context, in PostInput) (MessageView, error)
}

// Responder answers "@ai" questions on behalf of the AI account.
type Responder struct {
	completer ai.Completer
	messages  store.MessageStore
	poster    Poster
	recorder  metrics.Recorder
	logger    *zap.Logger
}

func NewResponder(completer ai.Completer, messages store.MessageStore, poster Poster, recorder metrics.Recorder, logger *zap.Logger) *Responder {
	return &Responder{
		completer: completer,
		messages:  messages,
		poster:    poster,
		recorder:  recorder,
		logger:    logger,
	}
}

// Respond asks the completer about query and posts the answer. When the completer asks for
// context, it retries once with recent history.
func (r *Responder) Respond(ctx context.Context, query string) error {
	outcome := metrics.AIOutcomeReplied

	reply, err := r.completer.Complete(ctx, initialPrompt(query))
	if err != nil {
		r.recorder.RecordAIReply(metrics.AIOutcomeFailed)
		return fmt.Errorf("completion failed: %w", err)
	}

	if strings.Contains(strings.ToUpper(reply), ContextSentinel) {
		outcome = metrics.AIOutcomeContextRetry

		history, err := r.messages.RecentBodies(ctx, historySize, historySkip)
		if err != nil {
			r.recorder.RecordAIReply(metrics.AIOutcomeFailed)
			return fmt.Errorf("failed to load history: %w", err)
		}
		slices.Reverse(history)

		reply, err = r.completer.Complete(ctx, retryPrompt(query, history))
		if err != nil {
			r.recorder.RecordAIReply(metrics.AIOutcomeFailed)
			return fmt.Errorf("completion with context failed: %w", err)
		}
	}

	reply = truncate(strings.TrimSpace(reply), MaxMessageLength)
	if reply == "" {
		r.recorder.RecordAIReply(metrics.AIOutcomeEmpty)
		r.logger.Debug("empty AI reply dropped", zap.String("query", query))
		return nil
	}

	if _, err := r.poster.Post(ctx, PostInput{
		AuthorID: models.AIAccountID,
		Body:     reply,
		Type:     string(models.MessageTypeText),
	}); err != nil {
		r.recorder.RecordAIReply(metrics.AIOutcomeFailed)
		return fmt.Errorf("failed to post AI reply: %w", err)
	}

	r.recorder.RecordAIReply(outcome)
	return nil
}

func initialPrompt(query string) string {
	return "Context : " + systemPrompt + contextRequest + " Question : " + query
}

func retryPrompt(query string, history []string) string {
	return "Context : " + systemPrompt + "\nPrevious conversation:\n" + strings.Join(history, "\n") + "\nQuestion : " + query
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}
