package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecord(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewWithZap(zap.New(core), "api", "test")

	l.Record(context.Background(), Event{
		Action:    ActionUserRoleAssigned,
		ActorID:   "u-1",
		ActorMail: "admin@salud.co",
		Target:    "user:u-2",
		Details:   map[string]interface{}{"role": "operator"},
	})
	l.Record(context.Background(), Event{Action: ActionUnauthorizedAccess, IP: "10.0.0.1"})

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "user_role_assigned", first["action"])
	assert.Equal(t, "a***@salud.co", first["actor_email"])
	assert.Equal(t, "user:u-2", first["target"])
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j***@example.com", MaskEmail("juan@example.com"))
	assert.Equal(t, "***@x.co", MaskEmail("a@x.co"))
	assert.Len(t, MaskEmail("no-at-sign"), 16)
}
