package shared

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestSession_NilFallsBackToGlobals(t *testing.T) {
	var s *Session

	assert.Same(t, UserLog, s.Logger())
	assert.Same(t, UserLog, LoggerFrom(context.Background()))
	assert.Same(t, UserLog, LoggerFrom(s.Context(context.Background())))
}

func TestSession_LogsStayApart(t *testing.T) {
	var alice, bob bytes.Buffer
	a := &Session{Log: log.New(&alice)}
	b := &Session{Log: log.New(&bob)}

	LoggerFrom(a.Context(context.Background())).Info("hello from alice")
	LoggerFrom(b.Context(context.Background())).Info("hello from bob")

	assert.Contains(t, alice.String(), "hello from alice")
	assert.NotContains(t, alice.String(), "bob")
	assert.Contains(t, bob.String(), "hello from bob")
	assert.NotContains(t, bob.String(), "alice")
}
