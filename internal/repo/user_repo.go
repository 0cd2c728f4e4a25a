package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/odi-auth/internal/model"
	"github.com/xxxsen/odi-auth/internal/pkg/apperrors"
	"github.com/xxxsen/odi-auth/internal/pkg/dbutil"
)

// ErrDuplicateAccount marks an insert that lost the race on the account
// unique constraint; the allocator retries with a fresh account.
var ErrDuplicateAccount = errors.New("account already taken")

var userColumns = []string{"id", "account", "email", "password_hash", "email_verified", "github_id", "github_login", "ctime", "mtime"}

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	data := map[string]interface{}{
		"id":             user.ID,
		"account":        user.Account,
		"email":          user.Email,
		"password_hash":  user.PasswordHash,
		"email_verified": user.EmailVerified,
		"github_id":      user.GithubID,
		"github_login":   user.GithubLogin,
		"ctime":          user.Ctime,
		"mtime":          user.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("users", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		switch dbutil.ConflictConstraint(err) {
		case "users_email_key":
			return apperrors.ErrEmailTaken
		case "users_account_key":
			return ErrDuplicateAccount
		case "users_github_id_uniq":
			return apperrors.ErrProviderAlreadyLinked
		}
		return err
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"email": email})
}

func (r *UserRepo) GetByAccount(ctx context.Context, account string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"account": account})
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"id": userID})
}

func (r *UserRepo) GetByGithubID(ctx context.Context, githubID string) (*model.User, error) {
	// unlinked users carry github_id=''; never match them
	if githubID == "" {
		return nil, apperrors.ErrUserNotFound
	}
	return r.getOne(ctx, map[string]interface{}{"github_id": githubID})
}

func (r *UserRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.User, error) {
	sqlStr, args, err := builder.BuildSelect("users", where, userColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, apperrors.ErrUserNotFound
	}
	var user model.User
	if err := rows.Scan(&user.ID, &user.Account, &user.Email, &user.PasswordHash, &user.EmailVerified, &user.GithubID, &user.GithubLogin, &user.Ctime, &user.Mtime); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) ExistsByAccount(ctx context.Context, account string) (bool, error) {
	sqlStr, args, err := builder.BuildSelect("users", map[string]interface{}{"account": account}, []string{"id"})
	if err != nil {
		return false, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()
	return rows.Next(), nil
}

func (r *UserRepo) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string, mtime int64) error {
	return r.update(ctx, map[string]interface{}{"email": email}, map[string]interface{}{
		"password_hash": passwordHash,
		"mtime":         mtime,
	})
}

func (r *UserRepo) UpdatePasswordByID(ctx context.Context, userID, passwordHash string, mtime int64) error {
	return r.update(ctx, map[string]interface{}{"id": userID}, map[string]interface{}{
		"password_hash": passwordHash,
		"mtime":         mtime,
	})
}

func (r *UserRepo) BindGithub(ctx context.Context, userID, githubID, githubLogin string, mtime int64) error {
	err := r.update(ctx, map[string]interface{}{"id": userID}, map[string]interface{}{
		"github_id":    githubID,
		"github_login": githubLogin,
		"mtime":        mtime,
	})
	if dbutil.ConflictConstraint(err) == "users_github_id_uniq" {
		return apperrors.ErrProviderAlreadyLinked
	}
	return err
}

// MarkEmailVerified flips email_verified 0 -> 1 for the user. A row that is
// already verified, or a missing user, affects zero rows.
func (r *UserRepo) MarkEmailVerified(ctx context.Context, userID string) error {
	where := map[string]interface{}{"id": userID, "email_verified": 0}
	update := map[string]interface{}{"email_verified": 1}
	sqlStr, args, err := builder.BuildUpdate("users", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrAlreadyVerified
	}
	return nil
}

func (r *UserRepo) update(ctx context.Context, where, update map[string]interface{}) error {
	sqlStr, args, err := builder.BuildUpdate("users", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
