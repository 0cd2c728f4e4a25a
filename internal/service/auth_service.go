package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/odi-auth/internal/model"
	"github.com/xxxsen/odi-auth/internal/pkg/apperrors"
	"github.com/xxxsen/odi-auth/internal/pkg/jwt"
	"github.com/xxxsen/odi-auth/internal/pkg/password"
	"github.com/xxxsen/odi-auth/internal/repo"
)

// AuthService orchestrates registration, the login flows, password
// reset/change and email verification.
type AuthService struct {
	users     *repo.UserRepo
	codes     *CodeService
	sender    EmailSender
	allocator *accountAllocator
	jwtSecret []byte
	jwtTTL    time.Duration
	baseURL   string
}

func NewAuthService(users *repo.UserRepo, codes *CodeService, sender EmailSender, secret []byte, ttl time.Duration, baseURL string) *AuthService {
	return &AuthService{
		users:     users,
		codes:     codes,
		sender:    sender,
		allocator: &accountAllocator{users: users},
		jwtSecret: secret,
		jwtTTL:    ttl,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// RegisterByEmail consumes a register-purpose code and creates the user.
// Returns the freshly allocated account.
func (s *AuthService) RegisterByEmail(ctx context.Context, email, code, plainPassword, confirmPassword string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || code == "" || plainPassword == "" || confirmPassword == "" {
		return "", apperrors.ErrInvalidArgument
	}
	if plainPassword != confirmPassword {
		return "", apperrors.ErrPasswordMismatch
	}
	if err := s.codes.ConsumeCode(ctx, email, code, PurposeRegister); err != nil {
		return "", err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return "", apperrors.ErrEmailTaken
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return "", err
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return "", err
	}
	now := time.Now().Unix()
	user := &model.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: hash,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.allocator.CreateWithAccount(ctx, user); err != nil {
		return "", err
	}
	s.sendVerificationLink(ctx, user)
	return user.Account, nil
}

// sendVerificationLink mails the signed verify-email link. Registration has
// already committed; a mail failure here is logged, not returned.
func (s *AuthService) sendVerificationLink(ctx context.Context, user *model.User) {
	if s.baseURL == "" {
		return
	}
	token, err := jwt.GenerateVerifyEmailToken(user.ID, s.jwtSecret, s.jwtTTL)
	if err != nil {
		logutil.GetLogger(ctx).Error("generate verify token", zap.Error(err))
		return
	}
	link := fmt.Sprintf("%s/verify-email?token=%s", s.baseURL, url.QueryEscape(token))
	body := fmt.Sprintf("Please verify your email address by opening this link: %s", link)
	if err := s.sender.Send(user.Email, "Verify your email", body); err != nil {
		logutil.GetLogger(ctx).Error("send verification mail",
			zap.String("email", user.Email), zap.Error(err))
	}
}

// LoginWithPassword authenticates by account+password or email+password.
// The account takes precedence when both are given.
func (s *AuthService) LoginWithPassword(ctx context.Context, account, email, plainPassword string) (string, error) {
	if plainPassword == "" {
		return "", apperrors.ErrMissingCredential
	}
	var user *model.User
	var err error
	switch {
	case account != "":
		user, err = s.users.GetByAccount(ctx, strings.TrimSpace(account))
	case email != "":
		user, err = s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	default:
		return "", apperrors.ErrMissingCredential
	}
	if err != nil {
		return "", err
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return "", apperrors.ErrInvalidPassword
	}
	return s.issueToken(user)
}

// LoginWithEmailCode consumes a login-purpose code. The user must already
// exist; this flow never auto-registers.
func (s *AuthService) LoginWithEmailCode(ctx context.Context, email, code string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || code == "" {
		return "", apperrors.ErrInvalidArgument
	}
	if err := s.codes.ConsumeCode(ctx, email, code, PurposeLogin); err != nil {
		return "", err
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return s.issueToken(user)
}

func (s *AuthService) ResetPasswordByCode(ctx context.Context, email, code, newPassword, confirmPassword string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || code == "" || newPassword == "" || confirmPassword == "" {
		return apperrors.ErrInvalidArgument
	}
	if newPassword != confirmPassword {
		return apperrors.ErrPasswordMismatch
	}
	if err := s.codes.ConsumeCode(ctx, email, code, PurposeReset); err != nil {
		return err
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordByEmail(ctx, email, hash, time.Now().Unix())
}

func (s *AuthService) ChangePasswordWithOld(ctx context.Context, email, oldPassword, newPassword, confirmPassword string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || oldPassword == "" || newPassword == "" || confirmPassword == "" {
		return apperrors.ErrInvalidArgument
	}
	if newPassword != confirmPassword {
		return apperrors.ErrPasswordMismatch
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := password.Compare(user.PasswordHash, oldPassword); err != nil {
		return apperrors.ErrInvalidPassword
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordByID(ctx, user.ID, hash, time.Now().Unix())
}

// VerifyEmail handles the signed-link flow: the conditional update only
// succeeds for an existing, not-yet-verified user.
func (s *AuthService) VerifyEmail(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.ErrInvalidArgument
	}
	return s.users.MarkEmailVerified(ctx, userID)
}

func (s *AuthService) issueToken(user *model.User) (string, error) {
	return jwt.GenerateToken(user.ID, user.Account, user.Email, s.jwtSecret, s.jwtTTL)
}
