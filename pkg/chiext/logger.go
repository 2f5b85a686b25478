// Package chiext carries chi middleware shared by HTTP surfaces.
package chiext

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger is a chi request logger that writes through slog.
func Logger() func(next http.Handler) http.Handler {
	return middleware.RequestLogger(logFormatter{})
}

type logFormatter struct{}

func (logFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	attrs := []any{slog.String("from", r.RemoteAddr)}
	if id := middleware.GetReqID(r.Context()); id != "" {
		attrs = append(attrs, slog.String("request", id))
	}
	return &logEntry{
		msg:   fmt.Sprintf("%s %s %s", r.Method, r.RequestURI, r.Proto),
		attrs: attrs,
	}
}

type logEntry struct {
	msg   string
	attrs []any
}

func (l *logEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra any) {
	attrs := append(l.attrs,
		slog.Int("status", status),
		slog.Int("bytes", bytes),
		slog.String("elapsed", elapsed.String()),
	)
	if status >= 500 {
		slog.Error(l.msg, attrs...)
		return
	}
	slog.Info(l.msg, attrs...)
}

func (l *logEntry) Panic(v any, stack []byte) {
	middleware.PrintPrettyStack(v)
}
