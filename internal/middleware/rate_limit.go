package middleware

import (
	"context"
	"sync"

	"github.com/keshon/switchboard/pkg/cmd"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// MsgTooFast is shown to users who exceed their command rate.
const MsgTooFast = "You're using commands too quickly. Please wait a moment."

const pruneThreshold = 1024

// RateLimiter keeps one token bucket per user.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows perSecond commands per user with the given burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

// Allow reports whether the user may run a command now.
func (l *RateLimiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[userID]
	if !ok {
		if len(l.limiters) >= pruneThreshold {
			l.prune()
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = lim
	}
	return lim.Allow()
}

// prune drops buckets that have refilled; they behave like new ones.
func (l *RateLimiter) prune() {
	for id, lim := range l.limiters {
		if lim.Tokens() >= float64(l.burst) {
			delete(l.limiters, id)
		}
	}
}

// WithRateLimit skips commands from users over their rate and tells them so.
// exempt may be nil.
func WithRateLimit(l *RateLimiter, exempt func(userID string) bool, log zerolog.Logger) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if exempt != nil && exempt(inv.AuthorID) {
				return c.Run(ctx, inv)
			}
			if l.Allow(inv.AuthorID) {
				return c.Run(ctx, inv)
			}

			log.Debug().Str("user", inv.AuthorID).Str("command", c.Meta().Name).Msg("rate limited")
			reply := cmd.Error(MsgTooFast)
			reply.Ephemeral = true
			if err := inv.Send(ctx, reply, cmd.ModeReply); err != nil {
				log.Error().Err(err).Msg("failed to send rate limit notice")
			}
			return nil
		})
	}
}
