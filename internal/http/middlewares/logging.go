package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dropDatabas3/accounts/internal/observability/logger"
)

// WithLogging inyecta en el contexto un logger con request_id, method y path
// y registra cada request al terminar.
//
//	{"level":"info","msg":"request completed","request_id":"...","method":"POST","path":"/v1/auth/login","status":200,"duration_ms":45}
func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqLog := logger.L().With(
			logger.RequestID(GetRequestID(r.Context())),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
		)
		ctx := logger.ToContext(r.Context(), reqLog)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []zap.Field{logger.Status(status), logger.Duration(time.Since(start)), logger.ClientIP(r.RemoteAddr)}
		switch {
		case status >= 500:
			reqLog.Error("request completed", fields...)
		case status >= 400:
			reqLog.Warn("request completed", fields...)
		default:
			reqLog.Info("request completed", fields...)
		}
	})
}
