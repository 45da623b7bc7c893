package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubEngine struct {
	err   error
	calls int
}

func (s *stubEngine) Shutdown() error {
	s.calls++
	return s.err
}

func TestShutdownReportsFailure(t *testing.T) {
	failing := &stubEngine{err: errors.New("device lost during idle wait")}
	assert.False(t, shutdown(failing))
	assert.Equal(t, 1, failing.calls)

	clean := &stubEngine{}
	assert.True(t, shutdown(clean))
	assert.Equal(t, 1, clean.calls)
}
