package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/odi-auth/internal/model"
	"github.com/xxxsen/odi-auth/internal/pkg/apperrors"
	"github.com/xxxsen/odi-auth/internal/pkg/dbutil"
)

type EmailCodeRepo struct {
	db *sql.DB
}

func NewEmailCodeRepo(db *sql.DB) *EmailCodeRepo {
	return &EmailCodeRepo{db: db}
}

func (r *EmailCodeRepo) Create(ctx context.Context, code *model.EmailCode) error {
	data := map[string]interface{}{
		"id":         code.ID,
		"email":      code.Email,
		"code":       code.Code,
		"purpose":    code.Purpose,
		"used":       code.Used,
		"ctime":      code.Ctime,
		"expires_at": code.ExpiresAt,
	}
	sqlStr, args, err := builder.BuildInsert("email_codes", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// Latest returns the most recently created row matching the exact
// (email, code, purpose) triple. Older rows for the same pair are ignored.
func (r *EmailCodeRepo) Latest(ctx context.Context, email, code, purpose string) (*model.EmailCode, error) {
	where := map[string]interface{}{
		"email":    email,
		"code":     code,
		"purpose":  purpose,
		"_orderby": "ctime desc",
		"_limit":   []uint{0, 1},
	}
	sqlStr, args, err := builder.BuildSelect("email_codes", where, []string{"id", "email", "code", "purpose", "used", "ctime", "expires_at"})
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
		return nil, apperrors.ErrCodeNotFound
	}
	var item model.EmailCode
	if err := rows.Scan(&item.ID, &item.Email, &item.Code, &item.Purpose, &item.Used, &item.Ctime, &item.ExpiresAt); err != nil {
		return nil, err
	}
	return &item, nil
}

// MarkUsed is the single consumption point: the conditional used=0 predicate
// makes concurrent consumers race on exactly one winner.
func (r *EmailCodeRepo) MarkUsed(ctx context.Context, id string) error {
	where := map[string]interface{}{"id": id, "used": 0}
	update := map[string]interface{}{"used": 1}
	sqlStr, args, err := builder.BuildUpdate("email_codes", where, update)
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
		return apperrors.ErrCodeAlreadyUsed
	}
	return nil
}
