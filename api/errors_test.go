package api_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-counter/api"
)

func TestErrorMessage(t *testing.T) {
	err := api.NewError(api.ErrCodeAlreadyExists, "connection")
	assert.Equal(t, "connection", err.Error())

	err.WithContext("fd", 7).Wrap(api.ErrAlreadyExists)
	assert.Equal(t, "connection (context: map[fd:7]): resource already exists", err.Error())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("bad file descriptor")
	err := api.NewError(api.ErrCodeInternal, "epoll ctl add").Wrap(cause)
	assert.ErrorIs(t, err, cause)

	var zero api.Error
	zero.WithContext("fd", 1)
	assert.Equal(t, 1, zero.Context["fd"])
	assert.NoError(t, zero.Unwrap())
}
