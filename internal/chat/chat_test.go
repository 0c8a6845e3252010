package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chesslounge/backend/internal/background"
	"chesslounge/backend/internal/models"
	"chesslounge/backend/internal/store/storetest"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCompleter struct {
	mu      sync.Mutex
	replies []string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func (f *fakeCompleter) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

type fakePublisher struct {
	mu        sync.Mutex
	published []MessageView
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, data.(MessageView))
	return nil
}

func (f *fakePublisher) Published() []MessageView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]MessageView(nil), f.published...)
}

type recorder struct {
	mu         sync.Mutex
	posted     []string
	pubFailure int
	aiOutcomes []string
}

func (r *recorder) RecordMessagePosted(t string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posted = append(r.posted, t)
}
func (r *recorder) RecordPublishFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pubFailure++
}
func (r *recorder) RecordCheckIn(bool)     {}
func (r *recorder) RecordDailyReset(int64) {}
func (r *recorder) RecordAIReply(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aiOutcomes = append(r.aiOutcomes, outcome)
}

func (r *recorder) outcomes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.aiOutcomes...)
}

type fixture struct {
	accounts  *storetest.Accounts
	messages  *storetest.Messages
	publisher *fakePublisher
	completer *fakeCompleter
	recorder  *recorder
	runner    *background.Runner
	pipeline  *Pipeline
	alice     models.Account
}

func newFixture(t *testing.T, completer *fakeCompleter) *fixture {
	t.Helper()
	alice := models.Account{ID: "11111111-1111-1111-1111-111111111111", Username: "alice01"}
	f := &fixture{
		accounts:  storetest.NewAccounts(alice),
		messages:  storetest.NewMessages(),
		publisher: &fakePublisher{},
		completer: completer,
		recorder:  &recorder{},
		runner:    background.NewRunner(zap.NewNop(), 5*time.Second),
		alice:     alice,
	}
	deps := Deps{
		Messages:  f.messages,
		Accounts:  f.accounts,
		Publisher: f.publisher,
		Runner:    f.runner,
		Recorder:  f.recorder,
		Logger:    zap.NewNop(),
	}
	if completer != nil {
		deps.Completer = completer
	}
	f.pipeline = NewPipeline(deps)
	t.Cleanup(func() { f.runner.Shutdown(context.Background()) })
	return f
}

// wait drains the background runner so detached tasks have finished.
func (f *fixture) wait(t *testing.T) {
	t.Helper()
	require.NoError(t, f.runner.Shutdown(context.Background()))
}

var errBoom = errors.New("boom")
