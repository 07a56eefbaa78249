package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithContext_CarriesActorAndRequestID(t *testing.T) {
	log := New("debug")

	ctx := ContextWithActor(context.Background(), "mnguema")
	ctx = ContextWithRequestID(ctx, "req-42")

	entry := log.WithContext(ctx)
	assert.Equal(t, "mnguema", entry.Data["actor"])
	assert.Equal(t, "req-42", entry.Data["request_id"])
}

func TestWithContext_IgnoresForeignStringKeys(t *testing.T) {
	log := New("debug")

	ctx := context.WithValue(context.Background(), "actor", "impostor") //nolint:staticcheck
	ctx = context.WithValue(ctx, "request_id", "fake")                  //nolint:staticcheck

	entry := log.WithContext(ctx)
	assert.NotContains(t, entry.Data, "actor")
	assert.NotContains(t, entry.Data, "request_id")
}
