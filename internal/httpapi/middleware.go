package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SecureSpaceProject/secure-space-backend/internal/domain"
	"github.com/SecureSpaceProject/secure-space-backend/internal/errs"
	"github.com/SecureSpaceProject/secure-space-backend/internal/service"
)

type contextKey string

const userContextKey contextKey = "current-user"

// CurrentUser 从请求上下文取当前用户；requireAuth 之后必然非 nil
func CurrentUser(r *http.Request) *domain.User {
	u, _ := r.Context().Value(userContextKey).(*domain.User)
	return u
}

// requireAuth 解析 Bearer 令牌并把用户放进上下文
// 令牌缺失/非法返回 AUTH_REQUIRED，BLOCKED 用户返回 USER_BLOCKED
func requireAuth(auth service.AuthService, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, errs.New(errs.CodeAuthRequired))
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			writeError(w, errs.New(errs.CodeAuthRequired))
			return
		}

		user, err := auth.Identify(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
	}
}

// statusRecorder 捕获响应状态码，访问日志用
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withAccessLog 结构化访问日志
func withAccessLog(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
