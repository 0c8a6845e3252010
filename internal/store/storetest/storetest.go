// Package storetest provides in-memory stores for tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"chesslounge/backend/internal/apperr"
	"chesslounge/backend/internal/models"
	"chesslounge/backend/internal/store"
	"chesslounge/backend/internal/streak"

	"github.com/google/uuid"
)

// Accounts is an in-memory AccountStore.
type Accounts struct {
	mu       sync.Mutex
	accounts map[string]models.Account

	// Err, when set, is returned by every method.
	Err error
}

func NewAccounts(seed ...models.Account) *Accounts {
	s := &Accounts{accounts: make(map[string]models.Account)}
	for _, a := range seed {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		s.accounts[a.ID] = a
	}
	return s
}

// Get returns a copy of the stored account.
func (s *Accounts) Get(id string) (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	return a, ok
}

// Delete removes an account, simulating a dangling author reference.
func (s *Accounts) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
}

func (s *Accounts) find(match func(models.Account) bool) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, a := range s.accounts {
		if match(a) {
			found := a
			return &found, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (s *Accounts) FindByID(_ context.Context, id string) (*models.Account, error) {
	return s.find(func(a models.Account) bool { return a.ID == id })
}

func (s *Accounts) FindByGoogleEmail(_ context.Context, email string) (*models.Account, error) {
	return s.find(func(a models.Account) bool { return a.GoogleEmail != nil && *a.GoogleEmail == email })
}

func (s *Accounts) FindByLichessUsername(_ context.Context, username string) (*models.Account, error) {
	return s.find(func(a models.Account) bool { return a.LichessUsername != nil && *a.LichessUsername == username })
}

func (s *Accounts) FindByIDs(_ context.Context, ids []string) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var found []models.Account
	for _, id := range ids {
		if a, ok := s.accounts[id]; ok {
			found = append(found, a)
		}
	}
	return found, nil
}

func (s *Accounts) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, a := range s.accounts {
		if sameIdentity(a.GoogleEmail, account.GoogleEmail) || sameIdentity(a.LichessUsername, account.LichessUsername) {
			return store.ErrIdentityExists
		}
	}
	for _, a := range s.accounts {
		if a.Username == account.Username {
			return apperr.Conflict("Username is already taken")
		}
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now()
	account.CreatedAt, account.UpdatedAt = now, now
	s.accounts[account.ID] = *account
	return nil
}

func sameIdentity(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}

func (s *Accounts) UsernameExists(_ context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	for _, a := range s.accounts {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *Accounts) UpdateUsername(_ context.Context, id, username string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	a, ok := s.accounts[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	for otherID, other := range s.accounts {
		if otherID != id && other.Username == username {
			return nil, apperr.Conflict("Username is already taken")
		}
	}
	a.Username = username
	s.accounts[id] = a
	return &a, nil
}

func (s *Accounts) ConditionalCheckIn(_ context.Context, id string, expectedStreak, newStreak, award int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	a, ok := s.accounts[id]
	if !ok || a.CheckedInToday || a.Streak != expectedStreak {
		return false, nil
	}
	a.Points += award
	a.Streak = newStreak
	a.CheckedInToday = true
	s.accounts[id] = a
	return true, nil
}

func (s *Accounts) DailyReset(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	for id, a := range s.accounts {
		next := streak.Reset(streak.StateOf(&a))
		a.Streak, a.CheckedInToday = next.Streak, next.CheckedInToday
		s.accounts[id] = a
	}
	return int64(len(s.accounts)), nil
}

// Messages is an in-memory MessageStore with monotonically increasing ids.
type Messages struct {
	mu       sync.Mutex
	messages []models.Message
	nextID   uint

	// Err, when set, is returned by every method.
	Err error
	// Calls counts store accesses.
	Calls int
}

func NewMessages() *Messages {
	return &Messages{nextID: 1}
}

// All returns the stored messages oldest first.
func (s *Messages) All() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.messages...)
}

func (s *Messages) Create(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return s.Err
	}
	msg.ID = s.nextID
	s.nextID++
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *Messages) newestFirst() []models.Message {
	out := append([]models.Message(nil), s.messages...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *Messages) ListBefore(_ context.Context, cursor uint, limit int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.Message
	for _, m := range s.newestFirst() {
		if cursor > 0 && m.ID >= cursor {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Messages) Latest(_ context.Context) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	all := s.newestFirst()
	if len(all) == 0 {
		return nil, nil
	}
	return &all[0], nil
}

func (s *Messages) RecentBodies(_ context.Context, limit, skip int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	var bodies []string
	for i, m := range s.newestFirst() {
		if i < skip {
			continue
		}
		if len(bodies) == limit {
			break
		}
		bodies = append(bodies, m.Body)
	}
	return bodies, nil
}

var (
	_ store.AccountStore = (*Accounts)(nil)
	_ store.MessageStore = (*Messages)(nil)
)
