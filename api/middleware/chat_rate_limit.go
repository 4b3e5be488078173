package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ejidepharmacy/pharmabot-backend/api/responses"
	pkgerrors "github.com/ejidepharmacy/pharmabot-backend/pkg/errors"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/logger"
)

const maxPeekBytes = 64 << 10

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// ChatRateLimitPolicy throttles chat messages per customer phone number,
// falling back to the client IP when the body carries none.
type ChatRateLimitPolicy struct {
	window time.Duration
	limit  int
}

func NewChatRateLimitPolicy(window time.Duration, limit int) ChatRateLimitPolicy {
	return ChatRateLimitPolicy{window: window, limit: limit}
}

func (p ChatRateLimitPolicy) enabled() bool {
	return p.window > 0 && p.limit > 0
}

// ChatRateLimit enforces the policy with a fixed-window counter. A nil store
// disables limiting.
func ChatRateLimit(policy ChatRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBytes))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = peekedBody{Reader: io.MultiReader(bytes.NewReader(body), r.Body), Closer: r.Body}

			scope := "chat:ip:" + clientIP(r)
			if phone := extractPhone(body); phone != "" {
				scope = "chat:phone:" + phone
			}

			allowed, count, err := store.FixedWindowAllow(ctx, scope, int64(policy.limit), policy.window)
			if err != nil {
				// Fail open on limiter errors.
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "chat.rate_limit.unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				logg.Warn(logg.WithFields(ctx, map[string]any{
					"scope":          scope,
					"attempts":       count,
					"limit":          policy.limit,
					"window_seconds": int(policy.window.Seconds()),
				}), "chat.rate_limit.blocked")
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit,
					fmt.Sprintf("too many messages, try again in %s", policy.window)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractPhone(payload []byte) string {
	var body struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.PhoneNumber)
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// peekedBody replays the peeked prefix ahead of the unread remainder.
type peekedBody struct {
	io.Reader
	io.Closer
}
