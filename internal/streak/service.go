package streak

import (
	"context"

	"chesslounge/backend/internal/metrics"
	"chesslounge/backend/internal/store"

	"go.uber.org/zap"
)

// maxAttempts bounds retries when a concurrent write changed the streak between read and update.
const maxAttempts = 3

// Status is the current check-in state of an account.
type Status struct {
	Streak         int
	CheckedInToday bool
}

// Result is what a check-in did.
type Result struct {
	Decision
	TotalPoints int
}

// Service runs check-ins and daily resets against the account store.
type Service struct {
	accounts store.AccountStore
	metrics  metrics.Recorder
	logger   *zap.Logger
}

func NewService(accounts store.AccountStore, recorder metrics.Recorder, logger *zap.Logger) *Service {
	return &Service{accounts: accounts, metrics: recorder, logger: logger}
}

// Status returns the streak and today's flag for the account.
func (s *Service) Status(ctx context.Context, accountID string) (Status, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return Status{}, err
	}
	return Status{Streak: account.Streak, CheckedInToday: account.CheckedInToday}, nil
}

// CheckIn awards today's check-in. The write is conditional on the flag still being clear,
// so concurrent calls for one account produce at most one accepted result.
func (s *Service) CheckIn(ctx context.Context, accountID string) (Result, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		account, err := s.accounts.FindByID(ctx, accountID)
		if err != nil {
			return Result{}, err
		}

		state := StateOf(account)
		decision := Decide(state)
		if !decision.Accepted {
			s.metrics.RecordCheckIn(false)
			return Result{Decision: decision, TotalPoints: state.Points}, nil
		}

		ok, err := s.accounts.ConditionalCheckIn(ctx, accountID, state.Streak, decision.NewStreak, decision.PointsAwarded)
		if err != nil {
			return Result{}, err
		}
		if ok {
			s.metrics.RecordCheckIn(true)
			s.logger.Info("check-in accepted",
				zap.String("account_id", accountID),
				zap.Int("streak", decision.NewStreak),
				zap.Int("award", decision.PointsAwarded))
			return Result{Decision: decision, TotalPoints: Apply(state, decision).Points}, nil
		}
		// Lost a race: re-read and decide again. A winner has set the flag, so the next
		// pass normally ends with a rejected decision.
	}

	s.metrics.RecordCheckIn(false)
	return Result{Decision: Decision{}}, nil
}

// DailyReset starts a new day-window for every account.
func (s *Service) DailyReset(ctx context.Context) (int64, error) {
	n, err := s.accounts.DailyReset(ctx)
	if err != nil {
		return 0, err
	}
	s.metrics.RecordDailyReset(n)
	s.logger.Info("daily check-in reset complete", zap.Int64("accounts", n))
	return n, nil
}
