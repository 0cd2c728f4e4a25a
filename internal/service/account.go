package service

import (
	"context"
	"errors"

	"github.com/xxxsen/odi-auth/internal/model"
	"github.com/xxxsen/odi-auth/internal/pkg/apperrors"
	"github.com/xxxsen/odi-auth/internal/repo"
)

const allocateMaxAttempts = 10

// accountAllocator hands out collision-free numeric accounts. The identifier
// space is large relative to the user count, so hitting the attempt bound
// means a near-full space or a systemic fault and is surfaced as
// ErrAllocationExhausted rather than retried forever.
type accountAllocator struct {
	users *repo.UserRepo
}

func (a *accountAllocator) Allocate(ctx context.Context) (string, error) {
	for i := 0; i < allocateMaxAttempts; i++ {
		account := randomAccount()
		exists, err := a.users.ExistsByAccount(ctx, account)
		if err != nil {
			return "", err
		}
		if !exists {
			return account, nil
		}
	}
	return "", apperrors.ErrAllocationExhausted
}

// CreateWithAccount allocates an account and inserts the user. The
// existence check has a window before the insert; the unique constraint
// closes it, and a lost race is treated as one more allocation attempt.
func (a *accountAllocator) CreateWithAccount(ctx context.Context, user *model.User) error {
	for i := 0; i < allocateMaxAttempts; i++ {
		account, err := a.Allocate(ctx)
		if err != nil {
			return err
		}
		user.Account = account
		err = a.users.Create(ctx, user)
		if errors.Is(err, repo.ErrDuplicateAccount) {
			continue
		}
		return err
	}
	return apperrors.ErrAllocationExhausted
}
