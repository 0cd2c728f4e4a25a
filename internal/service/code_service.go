package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/odi-auth/internal/model"
	"github.com/xxxsen/odi-auth/internal/pkg/apperrors"
	"github.com/xxxsen/odi-auth/internal/repo"
)

const (
	PurposeRegister = "register"
	PurposeLogin    = "login"
	PurposeReset    = "reset"

	codeLength        = 6
	codeExpireMinutes = 10
)

var codeSubjects = map[string]string{
	PurposeRegister: "Registration verification code",
	PurposeLogin:    "Quick login verification code",
	PurposeReset:    "Password reset verification code",
}

func ValidPurpose(purpose string) bool {
	_, ok := codeSubjects[purpose]
	return ok
}

// CodeService issues and consumes one-time email codes.
type CodeService struct {
	codes  *repo.EmailCodeRepo
	sender EmailSender
}

func NewCodeService(codes *repo.EmailCodeRepo, sender EmailSender) *CodeService {
	return &CodeService{codes: codes, sender: sender}
}

// IssueCode persists a fresh code and then mails it. The stored row is never
// rolled back on a send failure; the failure is returned so the caller knows
// no mail went out.
func (s *CodeService) IssueCode(ctx context.Context, email, purpose string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !ValidPurpose(purpose) {
		return "", apperrors.ErrInvalidArgument
	}
	code := randomCode()
	now := time.Now().Unix()
	item := &model.EmailCode{
		ID:        newID(),
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		Used:      0,
		Ctime:     now,
		ExpiresAt: now + codeExpireMinutes*60,
	}
	if err := s.codes.Create(ctx, item); err != nil {
		return "", err
	}
	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, codeExpireMinutes)
	if err := s.sender.Send(email, codeSubjects[purpose], body); err != nil {
		return "", err
	}
	return code, nil
}

// ConsumeCode validates and burns the latest code matching the triple.
// A second call with the same arguments fails with ErrCodeAlreadyUsed:
// the mark-used update is conditional on used=0, so concurrent consumers
// cannot both win.
func (s *CodeService) ConsumeCode(ctx context.Context, email, code, purpose string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	code = strings.TrimSpace(code)
	if email == "" || code == "" || !ValidPurpose(purpose) {
		return apperrors.ErrInvalidArgument
	}
	item, err := s.codes.Latest(ctx, email, code, purpose)
	if err != nil {
		return err
	}
	if item.Used != 0 {
		return apperrors.ErrCodeAlreadyUsed
	}
	if time.Now().Unix() > item.ExpiresAt {
		return apperrors.ErrCodeExpired
	}
	return s.codes.MarkUsed(ctx, item.ID)
}
