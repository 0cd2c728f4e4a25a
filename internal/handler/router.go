package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/odi-auth/internal/middleware"
)

type RouterDeps struct {
	Auth      *AuthHandler
	Github    *GithubHandler
	JWTSecret []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/send-code", deps.Auth.SendCode)
	api.POST("/register", deps.Auth.Register)
	api.POST("/login", deps.Auth.Login)
	api.POST("/login-with-code", deps.Auth.LoginWithCode)
	api.POST("/send-reset", deps.Auth.SendReset)
	api.POST("/reset-by-code", deps.Auth.ResetByCode)
	api.POST("/change-with-old", deps.Auth.ChangeWithOld)
	api.GET("/verify-email", deps.Auth.VerifyEmail)

	api.GET("/github/login", deps.Github.Login)
	api.GET("/github/callback", deps.Github.Callback)
	api.POST("/github/register", deps.Github.Register)

	bindGroup := api.Group("")
	bindGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	bindGroup.POST("/github/bind", deps.Github.Bind)
}
