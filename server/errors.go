// File: server/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fatal failures of the server, tagged with the stage that failed.

package server

import (
	"errors"
	"fmt"

	"github.com/momentics/hioload-counter/internal/transport"
)

// Stage identifies a fatal failure point.
type Stage string

const (
	StageConfig   Stage = "config"
	StageSocket   Stage = "socket"
	StageSockopt  Stage = "sockopt"
	StageBind     Stage = "bind"
	StageListen   Stage = "listen"
	StageReactor  Stage = "reactor"
	StageRegister Stage = "register"
	StageWait     Stage = "wait"
)

var exitCodes = map[Stage]int{
	StageConfig:   1,
	StageSocket:   2,
	StageSockopt:  3,
	StageBind:     4,
	StageListen:   5,
	StageReactor:  6,
	StageRegister: 7,
	StageWait:     8,
}

// ExitCode returns the distinct process exit status for the stage.
func (s Stage) ExitCode() int {
	if code, ok := exitCodes[s]; ok {
		return code
	}
	return 1
}

// StageError is a fatal, stage-tagged error.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ExitCode maps any error to a process exit status: 0 for nil, the stage
// code for a StageError anywhere in the chain, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage.ExitCode()
	}
	return 1
}

func listenStageError(err error) *StageError {
	stage := StageSocket
	var setupErr *transport.SetupError
	if errors.As(err, &setupErr) {
		stage = Stage(setupErr.Stage)
	}
	return &StageError{Stage: stage, Err: err}
}
