package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/odi-auth/internal/middleware"
	"github.com/xxxsen/odi-auth/internal/pkg/apperrors"
	"github.com/xxxsen/odi-auth/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := value.(string)
	return userID
}

// handleError maps error kinds onto HTTP statuses: recognized business
// failures surface as 400 with their message, anything else as an opaque 500.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get(middleware.ContextRequestIDKey)
	if apperrors.IsBusiness(err) {
		logutil.GetLogger(c.Request.Context()).Info("request rejected",
			zap.Any("request_id", requestID),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.BadRequest(c, err.Error())
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.Any("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	response.Error(c, http.StatusInternalServerError, "internal error")
}
