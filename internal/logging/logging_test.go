package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFromContext(t *testing.T) {
	l := zap.NewNop().Sugar()
	assert.Same(t, l, FromContext(WithLogger(context.Background(), l)))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestNewLogger_Debug(t *testing.T) {
	t.Setenv("MOVINGAVG_DEBUG", "true")
	l := NewLogger()
	assert.True(t, l.Desugar().Core().Enabled(zap.DebugLevel))
}
