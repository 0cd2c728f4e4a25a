package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/odi-auth/internal/pkg/apperrors"
)

func newTestClient(tokenSrv, userSrv *httptest.Server) *GithubClient {
	client := NewGithubClient(Config{
		ClientID:     "cid",
		ClientSecret: "csecret",
		RedirectURL:  "http://localhost/cb",
		Scopes:       []string{"user:email"},
	}, nil)
	if tokenSrv != nil {
		client.tokenURL = tokenSrv.URL
	}
	if userSrv != nil {
		client.userURL = userSrv.URL
	}
	return client
}

func TestAuthURL(t *testing.T) {
	client := newTestClient(nil, nil)
	url := client.AuthURL("state-1")
	require.Contains(t, url, "client_id=cid")
	require.Contains(t, url, "state=state-1")
	require.Contains(t, url, "scope=user%3Aemail")
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "cid", r.FormValue("client_id"))
		require.Equal(t, "the-code", r.FormValue("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-abc"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, nil)
	token, err := client.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	require.Equal(t, "tok-abc", token)
}

func TestExchangeCodeProviderError(t *testing.T) {
	// github reports failures in a 200 body
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"bad_verification_code","error_description":"The code passed is incorrect or expired."}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, nil)
	_, err := client.ExchangeCode(context.Background(), "stale-code")
	var provErr *apperrors.ProviderError
	require.True(t, errors.As(err, &provErr))
	require.Equal(t, "The code passed is incorrect or expired.", provErr.Description)
}

func TestFetchUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"login":"octocat","email":"octo@x.com"}`))
	}))
	defer srv.Close()

	client := newTestClient(nil, srv)
	profile, err := client.FetchUser(context.Background(), "tok-abc")
	require.NoError(t, err)
	require.Equal(t, "42", profile.ID)
	require.Equal(t, "octocat", profile.Login)
	require.Equal(t, "octo@x.com", profile.Email)
}
