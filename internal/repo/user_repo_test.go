package repo

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/odi-auth/internal/model"
	"github.com/xxxsen/odi-auth/internal/pkg/apperrors"
	"github.com/xxxsen/odi-auth/internal/testutil"
)

func testID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func testUser(email, account string) *model.User {
	now := time.Now().Unix()
	return &model.User{
		ID:      testID(),
		Account: account,
		Email:   email,
		Ctime:   now,
		Mtime:   now,
	}
}

func uniqueSuffix() string {
	return fmt.Sprint(time.Now().UnixNano())
}

func TestUserCreateConstraintMapping(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()
	users := NewUserRepo(conn)

	suffix := uniqueSuffix()
	email := "user-" + suffix + "@example.com"
	account := suffix[:9]
	base := testUser(email, account)
	require.NoError(t, users.Create(ctx, base))

	dupEmail := testUser(email, suffix[1:10])
	require.ErrorIs(t, users.Create(ctx, dupEmail), apperrors.ErrEmailTaken)

	dupAccount := testUser("other-"+suffix+"@example.com", account)
	require.ErrorIs(t, users.Create(ctx, dupAccount), ErrDuplicateAccount)

	linked := testUser("gh-"+suffix+"@example.com", suffix[2:11])
	linked.GithubID = "gh-" + suffix
	require.NoError(t, users.Create(ctx, linked))
	dupGithub := testUser("gh2-"+suffix+"@example.com", suffix[3:12])
	dupGithub.GithubID = linked.GithubID
	require.ErrorIs(t, users.Create(ctx, dupGithub), apperrors.ErrProviderAlreadyLinked)
}

func TestUserLookupsAndExistence(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()
	users := NewUserRepo(conn)

	suffix := uniqueSuffix()
	user := testUser("lookup-"+suffix+"@example.com", suffix[:8])
	require.NoError(t, users.Create(ctx, user))

	got, err := users.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	got, err = users.GetByAccount(ctx, user.Account)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	_, err = users.GetByEmail(ctx, "absent-"+suffix+"@example.com")
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)

	exists, err := users.ExistsByAccount(ctx, user.Account)
	require.NoError(t, err)
	require.True(t, exists)
	exists, err = users.ExistsByAccount(ctx, "00000000000")
	require.NoError(t, err)
	require.False(t, exists)

	// several users carry an empty github_id; the partial unique index
	// must not treat them as duplicates, and lookups must not match them
	_, err = users.GetByGithubID(ctx, "")
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
