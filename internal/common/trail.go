package common

import (
	"context"
	"sync"

	"hackr_api/internal/domain/model"
)

type trailCtxKey struct{}

// Trail carries facts learned deep in the handler chain (who the caller is,
// which error message was sent) back out to the middleware that opened it.
// Context values only flow inward, so outer middleware hands inner layers a
// pointer they can fill in.
type Trail struct {
	mu           sync.Mutex
	identity     *model.Identity
	errorMessage string
}

// WithTrail attaches a fresh Trail to ctx.
func WithTrail(ctx context.Context) (context.Context, *Trail) {
	t := &Trail{}
	return context.WithValue(ctx, trailCtxKey{}, t), t
}

// TrailFromContext returns the Trail attached to ctx, or nil.
func TrailFromContext(ctx context.Context) *Trail {
	t, _ := ctx.Value(trailCtxKey{}).(*Trail)
	return t
}

func (t *Trail) SetIdentity(identity model.Identity) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.identity = &identity
}

func (t *Trail) SetErrorMessage(msg string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errorMessage = msg
}

// Identity returns a copy of the recorded identity, or nil if the request
// never authenticated.
func (t *Trail) Identity() *model.Identity {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.identity == nil {
		return nil
	}
	id := *t.identity
	return &id
}

func (t *Trail) ErrorMessage() string {
	if t == nil {
		return ""
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errorMessage
}
