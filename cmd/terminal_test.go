package cmd

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/require"
)

func TestTerminalDeviceNames(t *testing.T) {
	tests := map[string][2]string{
		"windows": {"CONIN$", "CONOUT$"},
		"linux":   {"/dev/tty", "/dev/tty"},
		"darwin":  {"/dev/tty", "/dev/tty"},
	}
	for goos, want := range tests {
		t.Run(goos, func(t *testing.T) {
			in, out := terminalDeviceNames(goos)
			require.Equal(t, want[0], in)
			require.Equal(t, want[1], out)
		})
	}
}

func TestGetProgramOptionsPipedUsesTTY(t *testing.T) {
	stubStdinPiped(t, true)
	origOpen := openTerminalIOFn
	t.Cleanup(func() { openTerminalIOFn = origOpen })

	inFile, err := os.CreateTemp(t.TempDir(), "tty-in-*")
	require.NoError(t, err)
	outFile, err := os.CreateTemp(t.TempDir(), "tty-out-*")
	require.NoError(t, err)
	openTerminalIOFn = func() (*os.File, *os.File, error) { return inFile, outFile, nil }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	opts, cleanup := getProgramOptions(ctx)
	require.Len(t, opts, 3)

	// both handles are closed, so a second close fails
	cleanup()
	require.Error(t, inFile.Close())
	require.Error(t, outFile.Close())
}

func TestGetProgramOptionsDefaults(t *testing.T) {
	origOpen := openTerminalIOFn
	t.Cleanup(func() { openTerminalIOFn = origOpen })

	t.Run("not piped", func(t *testing.T) {
		stubStdinPiped(t, false)
		openTerminalIOFn = func() (*os.File, *os.File, error) {
			t.Fatal("terminal must not be opened")
			return nil, nil, nil
		}
		opts, cleanup := getProgramOptions(context.Background())
		require.Nil(t, opts)
		require.NotPanics(t, cleanup)
	})

	t.Run("no tty", func(t *testing.T) {
		stubStdinPiped(t, true)
		openTerminalIOFn = func() (*os.File, *os.File, error) { return nil, nil, errors.New("no tty") }
		opts, cleanup := getProgramOptions(context.Background())
		require.Nil(t, opts)
		require.NotPanics(t, cleanup)
	})
}

type fakeResizeTicker struct {
	ch <-chan time.Time
}

func (f *fakeResizeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeResizeTicker) Stop()               {}

func TestWithTTYResizeWatcherSendsChangesOnly(t *testing.T) {
	origGetSize, origTicker, origSend := termGetSize, newResizeTicker, sendWindowSize
	t.Cleanup(func() {
		termGetSize, newResizeTicker, sendWindowSize = origGetSize, origTicker, origSend
	})

	calls := atomic.Int32{}
	termGetSize = func(int) (int, int, error) {
		if calls.Add(1) <= 2 {
			return 80, 24, nil
		}
		return 81, 24, nil
	}
	ticks := make(chan time.Time, 3)
	newResizeTicker = func(time.Duration) resizeTicker { return &fakeResizeTicker{ch: ticks} }
	msgs := make(chan tea.WindowSizeMsg, 3)
	sendWindowSize = func(_ *tea.Program, msg tea.WindowSizeMsg) { msgs <- msg }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(); _ = w.Close() })

	var p tea.Program
	withTTYResizeWatcher(ctx, w)(&p)

	recv := func() tea.WindowSizeMsg {
		select {
		case m := <-msgs:
			return m
		case <-time.After(500 * time.Millisecond):
			t.Fatal("timed out waiting for resize message")
			return tea.WindowSizeMsg{}
		}
	}

	ticks <- time.Now()
	require.Equal(t, tea.WindowSizeMsg{Width: 80, Height: 24}, recv())

	ticks <- time.Now()
	select {
	case m := <-msgs:
		t.Fatalf("unexpected resize message on unchanged size: %+v", m)
	case <-time.After(150 * time.Millisecond):
	}

	ticks <- time.Now()
	require.Equal(t, tea.WindowSizeMsg{Width: 81, Height: 24}, recv())
}
