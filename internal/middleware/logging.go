package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar = zap.NewNop().Sugar()

// SetLogger задаёт логгер для всех middleware пакета.
func SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		sugar = l
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

// Flush нужен для потоковой отдачи файлов через обёрнутый writer.
func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusRecorder) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// WithLogging пишет строку на каждый запрос; уровень зависит от кода ответа.
func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(sr, r)

		if sr.status == 0 {
			sr.status = http.StatusOK
		}
		fields := []any{
			"method", r.Method,
			"uri", r.URL.Path,
			"status", sr.status,
			"size", sr.bytes,
			"duration", time.Since(start),
			"remote_ip", clientIP(r),
		}
		if id := chimw.GetReqID(r.Context()); id != "" {
			fields = append(fields, "request_id", id)
		}
		sugar.Logw(levelForStatus(sr.status), "http request", fields...)
	})
}

func levelForStatus(code int) zapcore.Level {
	switch {
	case code >= 500:
		return zapcore.ErrorLevel
	case code >= 400:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
