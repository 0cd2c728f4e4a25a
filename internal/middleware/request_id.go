package middleware

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderRequestID carries the correlation id between client and server.
	HeaderRequestID = "X-Request-Id"
	// ContextRequestIDKey is the gin context key the id is stored under.
	ContextRequestIDKey = "request_id"
)

// RequestID echoes the caller-provided correlation id, minting one when
// the request arrives without it, and exposes it to later handlers.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" {
			buf := make([]byte, 16)
			_, _ = rand.Read(buf)
			reqID = hex.EncodeToString(buf)
		}
		c.Writer.Header().Set(HeaderRequestID, reqID)
		c.Set(ContextRequestIDKey, reqID)
		c.Next()
	}
}
