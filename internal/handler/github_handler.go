package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/odi-auth/internal/pkg/response"
	"github.com/xxxsen/odi-auth/internal/service"
)

type GithubHandler struct {
	github *service.GithubService
	states *stateStore
}

func NewGithubHandler(github *service.GithubService) *GithubHandler {
	return &GithubHandler{github: github, states: newStateStore()}
}

// Login redirects the browser to the provider's authorize page.
func (h *GithubHandler) Login(c *gin.Context) {
	state := h.states.Create()
	c.Redirect(http.StatusFound, h.github.AuthURL(state))
}

// Callback handles the provider redirect: exchange the code, fetch the
// profile, then either log the bound user in or report needRegister.
func (h *GithubHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "code is required")
		return
	}
	// the state must be one we issued on /github/login, usable exactly once
	if !h.states.Consume(c.Query("state")) {
		response.BadRequest(c, "invalid state")
		return
	}
	profile, err := h.github.FetchProfile(c.Request.Context(), code)
	if err != nil {
		handleError(c, err)
		return
	}
	result, err := h.github.LoginWithGithub(c.Request.Context(), profile.ID)
	if err != nil {
		handleError(c, err)
		return
	}
	if result.NeedRegister {
		response.Success(c, gin.H{"needRegister": true, "githubId": result.GithubID})
		return
	}
	response.Success(c, gin.H{"token": result.Token})
}

type bindRequest struct {
	Code string `json:"code"`
}

// Bind links the provider identity from a fresh authorization code to the
// bearer-authenticated user.
func (h *GithubHandler) Bind(c *gin.Context) {
	var req bindRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		response.BadRequest(c, "code is required")
		return
	}
	profile, err := h.github.FetchProfile(c.Request.Context(), req.Code)
	if err != nil {
		handleError(c, err)
		return
	}
	if err := h.github.BindGithub(c.Request.Context(), getUserID(c), profile.ID, profile.Login); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "github bound"})
}

type githubRegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	GithubID        string `json:"githubId"`
}

func (h *GithubHandler) Register(c *gin.Context) {
	var req githubRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	account, token, err := h.github.RegisterWithGithub(c.Request.Context(), req.Email, req.Password, req.ConfirmPassword, req.GithubID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"account": account, "token": token})
}
