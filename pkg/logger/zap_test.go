package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/pkg/ctxmeta"
)

func TestZapLogger_ContextFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := wrap(zap.New(core), false)

	ctx := ctxmeta.WithRequestID(context.Background(), "req-1")
	ctx = ctxmeta.WithIdentity(ctx, domain.Identity{UserID: "u1"})
	l.Warnf(ctx, "cart %s rejected", "u1")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "cart u1 rejected", entries[0].Message)

	fields := entries[0].ContextMap()
	require.Equal(t, "req-1", fields["request_id"])
	require.Equal(t, "u1", fields["user_id"])
}

func TestZapLogger_NoFieldsWithoutMeta(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := wrap(zap.New(core), false)

	l.Infof(context.Background(), "plain")
	require.Empty(t, logs.All()[0].ContextMap())
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Errorf(context.Background(), "dropped %d", 1)
	require.NotNil(t, l.Base())
}
