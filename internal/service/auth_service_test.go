package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/odi-auth/internal/pkg/apperrors"
	"github.com/xxxsen/odi-auth/internal/pkg/jwt"
	"github.com/xxxsen/odi-auth/internal/repo"
	"github.com/xxxsen/odi-auth/internal/testutil"
)

var testSecret = []byte("test-secret")

func newAuthStack(conn *sql.DB, sender EmailSender) (*AuthService, *CodeService) {
	users := repo.NewUserRepo(conn)
	codes := NewCodeService(repo.NewEmailCodeRepo(conn), sender)
	auth := NewAuthService(users, codes, sender, testSecret, time.Hour, "")
	return auth, codes
}

func registerTestUser(t *testing.T, ctx context.Context, auth *AuthService, codes *CodeService, email, pw string) string {
	t.Helper()
	code, err := codes.IssueCode(ctx, email, PurposeRegister)
	require.NoError(t, err)
	account, err := auth.RegisterByEmail(ctx, email, code, pw, pw)
	require.NoError(t, err)
	return account
}

func TestRegisterAndLogin(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()

	auth, codes := newAuthStack(conn, &recordingSender{})
	email := newTestEmail("register")
	account := registerTestUser(t, ctx, auth, codes, email, "pw1")
	require.GreaterOrEqual(t, len(account), 6)
	require.LessOrEqual(t, len(account), 10)

	// login by email
	token, err := auth.LoginWithPassword(ctx, "", email, "pw1")
	require.NoError(t, err)
	claims, err := jwt.ParseToken(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, account, claims.Account)
	require.Equal(t, email, claims.Email)

	// login by account
	_, err = auth.LoginWithPassword(ctx, account, "", "pw1")
	require.NoError(t, err)

	// account wins when both are given
	_, err = auth.LoginWithPassword(ctx, account, newTestEmail("absent"), "pw1")
	require.NoError(t, err)

	_, err = auth.LoginWithPassword(ctx, "", email, "bad-pw")
	require.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	_, err = auth.LoginWithPassword(ctx, "", "", "pw1")
	require.ErrorIs(t, err, apperrors.ErrMissingCredential)
}

func TestRegisterPasswordMismatchConsumesNothing(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()

	auth, codes := newAuthStack(conn, &recordingSender{})
	email := newTestEmail("mismatch")
	code, err := codes.IssueCode(ctx, email, PurposeRegister)
	require.NoError(t, err)

	_, err = auth.RegisterByEmail(ctx, email, code, "pw1", "pw2")
	require.ErrorIs(t, err, apperrors.ErrPasswordMismatch)

	// the code survived the rejected attempt
	account, err := auth.RegisterByEmail(ctx, email, code, "pw1", "pw1")
	require.NoError(t, err)
	require.NotEmpty(t, account)
}

func TestRegisterEmailTaken(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()

	auth, codes := newAuthStack(conn, &recordingSender{})
	email := newTestEmail("taken")
	registerTestUser(t, ctx, auth, codes, email, "pw1")

	code, err := codes.IssueCode(ctx, email, PurposeRegister)
	require.NoError(t, err)
	_, err = auth.RegisterByEmail(ctx, email, code, "pw2", "pw2")
	require.ErrorIs(t, err, apperrors.ErrEmailTaken)
}

func TestRegisterInvalidCode(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	auth, _ := newAuthStack(conn, &recordingSender{})
	_, err := auth.RegisterByEmail(context.Background(), newTestEmail("nocode"), "123456", "pw", "pw")
	require.ErrorIs(t, err, apperrors.ErrCodeNotFound)
}

func TestLoginWithEmailCode(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()

	auth, codes := newAuthStack(conn, &recordingSender{})
	email := newTestEmail("codelogin")
	registerTestUser(t, ctx, auth, codes, email, "pw1")

	code, err := codes.IssueCode(ctx, email, PurposeLogin)
	require.NoError(t, err)
	token, err := auth.LoginWithEmailCode(ctx, email, code)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// consumed: a replay fails
	_, err = auth.LoginWithEmailCode(ctx, email, code)
	require.ErrorIs(t, err, apperrors.ErrCodeAlreadyUsed)
}

func TestLoginWithEmailCodeNoAutoRegister(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()

	auth, codes := newAuthStack(conn, &recordingSender{})
	email := newTestEmail("ghost")
	code, err := codes.IssueCode(ctx, email, PurposeLogin)
	require.NoError(t, err)

	_, err = auth.LoginWithEmailCode(ctx, email, code)
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestResetPasswordByCode(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()

	auth, codes := newAuthStack(conn, &recordingSender{})
	email := newTestEmail("reset")
	registerTestUser(t, ctx, auth, codes, email, "old-pw")

	code, err := codes.IssueCode(ctx, email, PurposeReset)
	require.NoError(t, err)
	require.NoError(t, auth.ResetPasswordByCode(ctx, email, code, "new-pw", "new-pw"))

	_, err = auth.LoginWithPassword(ctx, "", email, "old-pw")
	require.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	_, err = auth.LoginWithPassword(ctx, "", email, "new-pw")
	require.NoError(t, err)
}

func TestResetPasswordUnknownUser(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()

	auth, codes := newAuthStack(conn, &recordingSender{})
	email := newTestEmail("resetghost")
	code, err := codes.IssueCode(ctx, email, PurposeReset)
	require.NoError(t, err)

	require.ErrorIs(t, auth.ResetPasswordByCode(ctx, email, code, "new-pw", "new-pw"), apperrors.ErrUserNotFound)
}

func TestChangePasswordWithOld(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()

	auth, codes := newAuthStack(conn, &recordingSender{})
	email := newTestEmail("change")
	registerTestUser(t, ctx, auth, codes, email, "old-pw")

	require.ErrorIs(t, auth.ChangePasswordWithOld(ctx, email, "wrong", "new-pw", "new-pw"), apperrors.ErrInvalidPassword)
	require.ErrorIs(t, auth.ChangePasswordWithOld(ctx, email, "old-pw", "new-pw", "other"), apperrors.ErrPasswordMismatch)
	require.NoError(t, auth.ChangePasswordWithOld(ctx, email, "old-pw", "new-pw", "new-pw"))

	_, err := auth.LoginWithPassword(ctx, "", email, "old-pw")
	require.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	_, err = auth.LoginWithPassword(ctx, "", email, "new-pw")
	require.NoError(t, err)
}

func TestVerifyEmailOnce(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()

	users := repo.NewUserRepo(conn)
	auth, codes := newAuthStack(conn, &recordingSender{})
	email := newTestEmail("verify")
	registerTestUser(t, ctx, auth, codes, email, "pw1")

	user, err := users.GetByEmail(ctx, email)
	require.NoError(t, err)
	require.Equal(t, 0, user.EmailVerified)

	require.NoError(t, auth.VerifyEmail(ctx, user.ID))
	require.ErrorIs(t, auth.VerifyEmail(ctx, user.ID), apperrors.ErrAlreadyVerified)
	require.ErrorIs(t, auth.VerifyEmail(ctx, "missing-user"), apperrors.ErrAlreadyVerified)
}
