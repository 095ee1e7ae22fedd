//go:build linux

package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteGracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() {
		done <- execute(ctx, []string{"--port", "0", "--resolve-peer-names=false", "--log-level", "warn"})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case code := <-done:
		if code == 2 {
			t.Skip("dual-stack sockets unavailable")
		}
		assert.Equal(t, 0, code)
	case <-time.After(2 * time.Second):
		t.Fatal("counterd did not shut down")
	}
}

func TestExecuteStopsOnSIGTERM(t *testing.T) {
	// keeps an early SIGTERM from killing the test binary before execute
	// has installed its own handler
	guard := make(chan os.Signal, 16)
	signal.Notify(guard, syscall.SIGTERM)
	defer signal.Stop(guard)

	done := make(chan int, 1)
	go func() {
		done <- execute(context.Background(), []string{"--port", "0", "--log-level", "warn"})
	}()

	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case code := <-done:
			if code == 2 {
				t.Skip("dual-stack sockets unavailable")
			}
			assert.Equal(t, 0, code)
			return
		case <-tick.C:
			require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))
		case <-deadline:
			t.Fatal("counterd did not stop on SIGTERM")
		}
	}
}

func TestExecuteRejectsUnknownFlag(t *testing.T) {
	assert.Equal(t, 1, execute(context.Background(), []string{"--no-such-flag"}))
}

func TestExecuteRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counterd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("read_buffer_size: 0\n"), 0o600))
	assert.Equal(t, 1, execute(context.Background(), []string{"--config", path}))
}

func TestExecuteRejectsBadLogLevel(t *testing.T) {
	assert.Equal(t, 1, execute(context.Background(), []string{"--log-level", "loud"}))
}
