package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/odi-auth/internal/pkg/apperrors"
	"github.com/xxxsen/odi-auth/internal/pkg/jwt"
	"github.com/xxxsen/odi-auth/internal/pkg/response"
	"github.com/xxxsen/odi-auth/internal/service"
)

type AuthHandler struct {
	auth      *service.AuthService
	codes     *service.CodeService
	jwtSecret []byte
}

func NewAuthHandler(auth *service.AuthService, codes *service.CodeService, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{auth: auth, codes: codes, jwtSecret: jwtSecret}
}

type sendCodeRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
}

func (h *AuthHandler) SendCode(c *gin.Context) {
	var req sendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	if _, err := h.codes.IssueCode(c.Request.Context(), req.Email, req.Purpose); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "verification code sent"})
}

type sendResetRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) SendReset(c *gin.Context) {
	var req sendResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	if _, err := h.codes.IssueCode(c.Request.Context(), req.Email, service.PurposeReset); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "verification code sent"})
}

type registerRequest struct {
	Email           string `json:"email"`
	Code            string `json:"code"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	account, err := h.auth.RegisterByEmail(c.Request.Context(), req.Email, req.Code, req.Password, req.ConfirmPassword)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"account": account})
}

type loginRequest struct {
	Account  string `json:"account"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	token, err := h.auth.LoginWithPassword(c.Request.Context(), req.Account, req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token})
}

type loginWithCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *AuthHandler) LoginWithCode(c *gin.Context) {
	var req loginWithCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	token, err := h.auth.LoginWithEmailCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token})
}

type resetByCodeRequest struct {
	Email           string `json:"email"`
	Code            string `json:"code"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *AuthHandler) ResetByCode(c *gin.Context) {
	var req resetByCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	if err := h.auth.ResetPasswordByCode(c.Request.Context(), req.Email, req.Code, req.NewPassword, req.ConfirmPassword); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "password reset"})
}

type changeWithOldRequest struct {
	Email           string `json:"email"`
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *AuthHandler) ChangeWithOld(c *gin.Context) {
	var req changeWithOldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	if err := h.auth.ChangePasswordWithOld(c.Request.Context(), req.Email, req.OldPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "password changed"})
}

// VerifyEmail consumes the signed link token and answers in plain text,
// matching the legacy flow's contract.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.String(http.StatusBadRequest, "token is required")
		return
	}
	claims, err := jwt.ParseVerifyEmailToken(tokenString, h.jwtSecret)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid token")
		return
	}
	if err := h.auth.VerifyEmail(c.Request.Context(), claims.UserID); err != nil {
		status := http.StatusInternalServerError
		if apperrors.IsBusiness(err) {
			status = http.StatusBadRequest
		}
		c.String(status, err.Error())
		return
	}
	c.String(http.StatusOK, "email verified")
}
