package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_OrderAndRoot(t *testing.T) {
	var calls []string
	base := &Func{
		M: Meta{Name: "ping"},
		Fn: func(context.Context, *Invocation) error {
			calls = append(calls, "ping")
			return nil
		},
	}
	tag := func(name string) Middleware {
		return func(c Command) Command {
			return Wrap(c, func(ctx context.Context, inv *Invocation) error {
				calls = append(calls, name)
				return c.Run(ctx, inv)
			})
		}
	}

	wrapped := Apply(base, tag("inner"), tag("outer"))
	require.NoError(t, wrapped.Run(context.Background(), &Invocation{}))

	assert.Equal(t, []string{"outer", "inner", "ping"}, calls)
	assert.Equal(t, "ping", wrapped.Meta().Name)
	assert.Same(t, Command(base), Root(wrapped))
}
