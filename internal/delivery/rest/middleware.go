package rest

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	userIDHeader     = "X-User-ID"
	adminTokenHeader = "X-Admin-Token"
	userIDKey        = "userID"
)

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(began)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// requireUser reads the caller id set by the upstream gateway.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(userIDHeader))
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			fail(c, http.StatusUnauthorized, codeUnauthorized, "missing or invalid "+userIDHeader+" header")
			return
		}
		c.Set(userIDKey, uint(id))
		c.Next()
	}
}

// requireAdmin is a no-op when no token is configured.
func requireAdmin(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		given := c.GetHeader(adminTokenHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
			fail(c, http.StatusUnauthorized, codeUnauthorized, "invalid admin token")
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, codeInvalidInput, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
