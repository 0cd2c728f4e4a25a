package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xxxsen/odi-auth/internal/model"
	"github.com/xxxsen/odi-auth/internal/oauth"
	"github.com/xxxsen/odi-auth/internal/pkg/apperrors"
	"github.com/xxxsen/odi-auth/internal/pkg/jwt"
	"github.com/xxxsen/odi-auth/internal/pkg/password"
	"github.com/xxxsen/odi-auth/internal/repo"
)

// GithubLoginResult is the explicit two-variant outcome of a provider
// login: either a token for a bound user, or a signal that the caller
// must register first.
type GithubLoginResult struct {
	Token        string
	NeedRegister bool
	GithubID     string
}

type GithubService struct {
	users     *repo.UserRepo
	client    *oauth.GithubClient
	allocator *accountAllocator
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewGithubService(users *repo.UserRepo, client *oauth.GithubClient, secret []byte, ttl time.Duration) *GithubService {
	return &GithubService{
		users:     users,
		client:    client,
		allocator: &accountAllocator{users: users},
		jwtSecret: secret,
		jwtTTL:    ttl,
	}
}

func (s *GithubService) AuthURL(state string) string {
	return s.client.AuthURL(state)
}

// FetchProfile runs the full provider round-trip: code -> token -> profile.
func (s *GithubService) FetchProfile(ctx context.Context, code string) (*oauth.Profile, error) {
	if code == "" {
		return nil, apperrors.ErrInvalidArgument
	}
	accessToken, err := s.client.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.client.FetchUser(ctx, accessToken)
}

// LoginWithGithub issues a token when the github id is already bound,
// otherwise returns the NeedRegister variant. The unbound case is not an
// error; the caller must branch on it.
func (s *GithubService) LoginWithGithub(ctx context.Context, githubID string) (*GithubLoginResult, error) {
	if githubID == "" {
		return nil, apperrors.ErrInvalidArgument
	}
	user, err := s.users.GetByGithubID(ctx, githubID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return &GithubLoginResult{NeedRegister: true, GithubID: githubID}, nil
	}
	if err != nil {
		return nil, err
	}
	token, err := jwt.GenerateToken(user.ID, user.Account, user.Email, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, err
	}
	return &GithubLoginResult{Token: token}, nil
}

// BindGithub links the github id to the authenticated user. A github id
// held by a different user fails; re-binding one's own id just refreshes
// the stored login name.
func (s *GithubService) BindGithub(ctx context.Context, userID, githubID, githubLogin string) error {
	if userID == "" || githubID == "" {
		return apperrors.ErrInvalidArgument
	}
	owner, err := s.users.GetByGithubID(ctx, githubID)
	if err == nil {
		if owner.ID != userID {
			return apperrors.ErrProviderAlreadyLinked
		}
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}
	return s.users.BindGithub(ctx, userID, githubID, githubLogin, time.Now().Unix())
}

// RegisterWithGithub creates a password-capable user pre-linked to the
// github id and logs it in.
func (s *GithubService) RegisterWithGithub(ctx context.Context, email, plainPassword, confirmPassword, githubID string) (string, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || plainPassword == "" || confirmPassword == "" || githubID == "" {
		return "", "", apperrors.ErrInvalidArgument
	}
	if plainPassword != confirmPassword {
		return "", "", apperrors.ErrPasswordMismatch
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return "", "", apperrors.ErrEmailTaken
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return "", "", err
	}
	if _, err := s.users.GetByGithubID(ctx, githubID); err == nil {
		return "", "", apperrors.ErrProviderAlreadyLinked
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return "", "", err
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return "", "", err
	}
	now := time.Now().Unix()
	user := &model.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: hash,
		GithubID:     githubID,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.allocator.CreateWithAccount(ctx, user); err != nil {
		return "", "", err
	}
	token, err := jwt.GenerateToken(user.ID, user.Account, user.Email, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return "", "", err
	}
	return user.Account, token, nil
}
