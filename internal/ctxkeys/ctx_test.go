package ctxkeys

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, UserID(ctx))
	assert.Empty(t, RequestID(ctx))
	assert.True(t, RequestStart(ctx).IsZero())

	now := time.Now()
	ctx = WithUserID(ctx, "u1")
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithRequestStart(ctx, now)

	assert.Equal(t, "u1", UserID(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, now, RequestStart(ctx))
}
