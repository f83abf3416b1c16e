package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/pantry-tracker/internal/auth"
	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
)

const (
	headerRequestID = "X-Request-ID"
	ctxUserKey      = "user"
)

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(headerRequestID, id)
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		code := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case code >= http.StatusInternalServerError:
			level = slog.LevelError
		case code >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		s.logger.Log(c.Request.Context(), level, "http.request",
			"req_id", common.RequestIDFromContext(c.Request.Context()),
			"method", c.Request.Method,
			"route", route,
			"status", code,
			"bytes", c.Writer.Size(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("http.panic",
					"req_id", common.RequestIDFromContext(c.Request.Context()),
					"route", c.FullPath(),
					"panic", r,
				)
				s.fail(c, common.InternalErrorf(nil, "internal server error"))
			}
		}()
		c.Next()
	}
}

// authenticate verifies the bearer token and resolves the local user row.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			s.fail(c, common.UnauthorizedError("missing bearer token"))
			return
		}
		claims, err := s.deps.Verifier.Verify(token)
		if err != nil {
			s.logger.Warn("auth.token.rejected",
				"req_id", common.RequestIDFromContext(c.Request.Context()),
				"error", err,
			)
			s.fail(c, common.UnauthorizedError("invalid or expired token"))
			return
		}

		u, err := s.deps.Users.GetOrCreate(c.Request.Context(), claims.User())
		if err != nil {
			s.fail(c, common.InternalErrorf(err, "failed to load user"))
			return
		}
		c.Set(ctxUserKey, u)
		c.Request = c.Request.WithContext(common.WithUserID(c.Request.Context(), u.ID))
		c.Next()
	}
}

// userID is only called behind authenticate.
func userID(c *gin.Context) uuid.UUID {
	id, _ := common.UserIDFromContext(c.Request.Context())
	return id
}

func currentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}
