package auth

import (
	"context"
	"testing"
	"time"

	"chesslounge/backend/internal/apperr"
	"chesslounge/backend/internal/models"
	"chesslounge/backend/internal/store"
	"chesslounge/backend/internal/store/storetest"
	"chesslounge/backend/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(seed ...models.Account) (*Service, *storetest.Accounts, *jwt.Signer) {
	accounts := storetest.NewAccounts(seed...)
	signer := jwt.NewSigner("secret", time.Hour)
	return NewService(accounts, signer, zap.NewNop()), accounts, signer
}

func TestLoginGoogle_CreatesThenReuses(t *testing.T) {
	svc, accounts, signer := newService()
	ctx := context.Background()
	profile := &GoogleProfile{Email: "magnus.c@example.com"}

	first, err := svc.LoginGoogle(ctx, profile)
	require.NoError(t, err)
	assert.True(t, first.IsNew)
	assert.Equal(t, "magnusc", first.Account.Username)
	assert.Equal(t, models.ProviderGoogle, first.Account.OAuthProvider)

	claims, err := signer.ParseToken(first.Token)
	require.NoError(t, err)
	assert.Equal(t, first.Account.ID, claims.ID)
	assert.Equal(t, "magnus.c@example.com", claims.Email)
	assert.Empty(t, claims.LichessUsername)

	second, err := svc.LoginGoogle(ctx, profile)
	require.NoError(t, err)
	assert.False(t, second.IsNew)
	assert.Equal(t, first.Account.ID, second.Account.ID)

	_, ok := accounts.Get(first.Account.ID)
	assert.True(t, ok)
}

func TestLoginGoogle_InvalidProfile(t *testing.T) {
	svc, _, _ := newService()
	_, err := svc.LoginGoogle(context.Background(), &GoogleProfile{})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestLoginGoogle_UsernameTaken(t *testing.T) {
	svc, _, _ := newService(models.Account{Username: "magnus"})

	res, err := svc.LoginGoogle(context.Background(), &GoogleProfile{Email: "magnus@example.com"})
	require.NoError(t, err)
	assert.True(t, res.IsNew)
	assert.Regexp(t, `^magnus[0-9a-f]{6}$`, res.Account.Username)
}

func TestLoginLichess(t *testing.T) {
	svc, _, signer := newService()
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	profile := &LichessProfile{ID: "dr-nykterstein", Username: "DrNykterstein"}
	profile.Count.All = 2000

	res, err := svc.LoginLichess(context.Background(), profile)
	require.NoError(t, err)
	assert.True(t, res.IsNew)
	assert.Equal(t, "DrNykterstein", res.Account.Username)
	require.NotNil(t, res.Account.LichessUsername)
	assert.Equal(t, "dr-nykterstein", *res.Account.LichessUsername)
	assert.Equal(t, 20, res.Account.AuthenticityScore)

	claims, err := signer.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "dr-nykterstein", claims.LichessUsername)

	again, err := svc.LoginLichess(context.Background(), profile)
	require.NoError(t, err)
	assert.False(t, again.IsNew)
	assert.Equal(t, res.Account.ID, again.Account.ID)
}

// racingAccounts links the identity from another login between the lookup and the insert.
type racingAccounts struct {
	*storetest.Accounts
	rival models.Account
	raced bool
}

func (r *racingAccounts) FindByGoogleEmail(ctx context.Context, email string) (*models.Account, error) {
	if !r.raced {
		r.raced = true
		if err := r.Accounts.Create(ctx, &r.rival); err != nil {
			return nil, err
		}
		return nil, apperr.NotFound("User not found")
	}
	return r.Accounts.FindByGoogleEmail(ctx, email)
}

func TestLoginGoogle_ConcurrentFirstLogin(t *testing.T) {
	email := "judit@example.com"
	accounts := &racingAccounts{
		Accounts: storetest.NewAccounts(),
		rival: models.Account{
			Username:      "judit",
			OAuthProvider: models.ProviderGoogle,
			GoogleEmail:   &email,
		},
	}
	svc := NewService(accounts, jwt.NewSigner("secret", time.Hour), zap.NewNop())

	res, err := svc.LoginGoogle(context.Background(), &GoogleProfile{Email: email})
	require.NoError(t, err)
	assert.False(t, res.IsNew)
	assert.Equal(t, accounts.rival.ID, res.Account.ID)
	assert.Equal(t, "judit", res.Account.Username)


	again, err := svc.LoginGoogle(context.Background(), &GoogleProfile{Email: email})
	require.NoError(t, err)
	assert.Equal(t, accounts.rival.ID, again.Account.ID)
}

func TestLoginLichess_IdentityAlreadyLinked(t *testing.T) {
	lichessID := "drnykterstein"
	svc, accounts, _ := newService()
	require.NoError(t, accounts.Create(context.Background(), &models.Account{
		Username:        "existing1",
		OAuthProvider:   models.ProviderLichess,
		LichessUsername: &lichessID,
	}))

	err := accounts.Create(context.Background(), &models.Account{
		Username:        "another1",
		OAuthProvider:   models.ProviderLichess,
		LichessUsername: &lichessID,
	})
	assert.ErrorIs(t, err, store.ErrIdentityExists)

	res, err := svc.LoginLichess(context.Background(), &LichessProfile{ID: lichessID, Username: "DrNykterstein"})
	require.NoError(t, err)
	assert.False(t, res.IsNew)
	assert.Equal(t, "existing1", res.Account.Username)
}

func TestLoginLichess_ShortName(t *testing.T) {
	svc, _, _ := newService()

	res, err := svc.LoginLichess(context.Background(), &LichessProfile{ID: "bob"})
	require.NoError(t, err)
	assert.Regexp(t, `^bob[0-9a-f]{6}$`, res.Account.Username)
	assert.NoError(t, ValidateUsername(res.Account.Username))
}

func TestLogin_StoreFailure(t *testing.T) {
	svc, accounts, _ := newService()
	accounts.Err = apperr.Store("failed to find account", context.DeadlineExceeded)

	_, err := svc.LoginGoogle(context.Background(), &GoogleProfile{Email: "a@b.c"})
	assert.Equal(t, apperr.KindTransient, apperr.KindOf(err))
}

func TestUpdateUsername(t *testing.T) {
	alice := models.Account{ID: "11111111-1111-1111-1111-111111111111", Username: "alice01"}
	bob := models.Account{ID: "22222222-2222-2222-2222-222222222222", Username: "bobby"}
	svc, _, _ := newService(alice, bob)
	ctx := context.Background()

	_, err := svc.UpdateUsername(ctx, alice.ID, "")
	assert.Equal(t, "Username is required", apperr.PublicMessage(err, ""))

	_, err = svc.UpdateUsername(ctx, alice.ID, "ab1")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.UpdateUsername(ctx, alice.ID, "bad name")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.UpdateUsername(ctx, alice.ID, "bobby")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	updated, err := svc.UpdateUsername(ctx, alice.ID, "abcde")
	require.NoError(t, err)
	assert.Equal(t, "abcde", updated.Username)

	_, err = svc.UpdateUsername(ctx, "33333333-3333-3333-3333-333333333333", "fresh1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
