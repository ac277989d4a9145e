package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"hackr_api/internal/common"
	"hackr_api/internal/domain/model"
	"hackr_api/internal/platform/metrics"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// AccessLogWriter persists access log entries.
type AccessLogWriter interface {
	Create(ctx context.Context, entry *model.AccessLog) error
}

// AuditConfig lists the paths that are never logged.
type AuditConfig struct {
	ExcludedPaths    []string
	ExcludedPrefixes []string
	WriteTimeout     time.Duration
}

// DefaultAuditConfig excludes the auth endpoints, the landing and listing
// pages, and the log listing itself.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		ExcludedPaths:    []string{"/", "/health", "/metrics", "/private/home", "/public/features"},
		ExcludedPrefixes: []string{"/auth/", "/private/logs"},
		WriteTimeout:     5 * time.Second,
	}
}

// AuditLogger records one access log entry per non-excluded request once the
// handler chain has returned. Writes happen off the request goroutine and
// their failures never reach the client.
type AuditLogger struct {
	logs     AccessLogWriter
	excluded map[string]struct{}
	prefixes []string
	timeout  time.Duration
	now      func() time.Time
	inflight sync.WaitGroup
}

func NewAuditLogger(logs AccessLogWriter, cfg AuditConfig) *AuditLogger {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	excluded := make(map[string]struct{}, len(cfg.ExcludedPaths))
	for _, p := range cfg.ExcludedPaths {
		excluded[p] = struct{}{}
	}
	return &AuditLogger{
		logs:     logs,
		excluded: excluded,
		prefixes: cfg.ExcludedPrefixes,
		timeout:  cfg.WriteTimeout,
		now:      time.Now,
	}
}

func (a *AuditLogger) isExcluded(path string) bool {
	if _, ok := a.excluded[path]; ok {
		return true
	}
	for _, prefix := range a.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (a *AuditLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.isExcluded(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := a.now()
		ctx, trail := common.WithTrail(r.Context())
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		url := r.URL.RequestURI()

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if rec := recover(); rec != nil {
				a.record(url, trail, http.StatusInternalServerError, a.now().Sub(start))
				panic(rec)
			}
			a.record(url, trail, status, a.now().Sub(start))
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func (a *AuditLogger) record(url string, trail *common.Trail, status int, elapsed time.Duration) {
	entry := &model.AccessLog{
		UserFirstName: model.AnonymousFirstName,
		UserEmail:     model.AnonymousEmail,
		URL:           url,
		Success:       status >= 200 && status < 300,
		DurationMs:    elapsed.Milliseconds(),
	}
	if identity := trail.Identity(); identity != nil {
		id := identity.ID
		entry.UserID = &id
		entry.UserFirstName = identity.FirstName
		entry.UserEmail = identity.Email
	}
	if msg := trail.ErrorMessage(); msg != "" {
		entry.ErrorMessage = &msg
	}

	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		if err := a.logs.Create(ctx, entry); err != nil {
			metrics.AuditWritesTotal.WithLabelValues("error").Inc()
			slog.Error("saving access log failed", "url", entry.URL, "error", err)
			return
		}
		metrics.AuditWritesTotal.WithLabelValues("ok").Inc()
		slog.Debug("access log saved", "url", entry.URL, "success", entry.Success, "duration_ms", entry.DurationMs)
	}()
}

// Wait blocks until every scheduled write has finished or ctx is done.
func (a *AuditLogger) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
