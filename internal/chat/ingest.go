package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"chesslounge/backend/internal/ai"
	"chesslounge/backend/internal/apperr"
	"chesslounge/backend/internal/background"
	"chesslounge/backend/internal/metrics"
	"chesslounge/backend/internal/models"
	"chesslounge/backend/internal/realtime"
	"chesslounge/backend/internal/store"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// MaxMessageLength is the longest accepted message body, in characters, after trimming.
const MaxMessageLength = 600

var aiDirective = regexp.MustCompile(`(?is)^@ai\s+(.+)`)

// ParseDirective extracts the query of a message starting with "@ai ".
func ParseDirective(body string) (string, bool) {
	m := aiDirective.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	query := strings.TrimSpace(m[1])
	return query, query != ""
}

// PostInput is a message submitted to the room.
type PostInput struct {
	AuthorID   string
	Body       string
	Type       string
	GameDetail json.RawMessage
}

// Deps are the collaborators of a Pipeline. Publisher and Completer are optional.
type Deps struct {
	Messages  store.MessageStore
	Accounts  store.AccountStore
	Publisher realtime.Publisher
	Completer ai.Completer
	Runner    *background.Runner
	Recorder  metrics.Recorder
	Logger    *zap.Logger
}

// Pipeline validates, stores and fans out chat messages.
type Pipeline struct {
	messages  store.MessageStore
	enricher  enricher
	publisher realtime.Publisher
	runner    *background.Runner
	responder *Responder
	recorder  metrics.Recorder
	logger    *zap.Logger
}

func NewPipeline(deps Deps) *Pipeline {
	if deps.Recorder == nil {
		deps.Recorder = metrics.Nop{}
	}
	p := &Pipeline{
		messages:  deps.Messages,
		enricher:  enricher{accounts: deps.Accounts, logger: deps.Logger},
		publisher: deps.Publisher,
		runner:    deps.Runner,
		recorder:  deps.Recorder,
		logger:    deps.Logger,
	}
	if deps.Completer != nil {
		p.responder = NewResponder(deps.Completer, deps.Messages, p, deps.Recorder, deps.Logger)
	}
	return p
}

// Post stores a message and returns it enriched with the author's name. Publishing and the
// AI reply run in the background and never fail the post.
func (p *Pipeline) Post(ctx context.Context, in PostInput) (MessageView, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return MessageView{}, apperr.Validation("Message cannot be empty.")
	}
	if utf8.RuneCountInString(body) > MaxMessageLength {
		return MessageView{}, apperr.TooLarge("Messages are limited to 600 characters.")
	}

	msg := models.Message{
		AuthorID: in.AuthorID,
		Body:     body,
		Type:     models.ParseMessageType(in.Type),
	}
	if msg.Type == models.MessageTypeGame && hasPayload(in.GameDetail) {
		msg.GameDetail = datatypes.JSON(in.GameDetail)
	}

	if err := p.messages.Create(ctx, &msg); err != nil {
		return MessageView{}, err
	}
	p.recorder.RecordMessagePosted(string(msg.Type))

	view := p.enricher.enrich(ctx, []models.Message{msg})[0]

	if p.publisher != nil {
		p.runner.Go("publish message", func(ctx context.Context) error {
			if err := p.publisher.Publish(ctx, view); err != nil {
				p.recorder.RecordPublishFailure()
				return err
			}
			return nil
		})
	}

	if p.responder != nil && in.AuthorID != models.AIAccountID {
		if query, ok := ParseDirective(body); ok {
			p.runner.Go("ai reply", func(ctx context.Context) error {
				return p.responder.Respond(ctx, query)
			})
		}
	}

	return view, nil
}

func hasPayload(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
