package tui

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

type fakeProgram struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (p *fakeProgram) Send(msg tea.Msg) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
}

func (p *fakeProgram) records() []logRecordMsg {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []logRecordMsg
	for _, m := range p.msgs {
		out = append(out, m.(logRecordMsg))
	}
	return out
}

func TestLogHandlerDropsBeforeProgram(t *testing.T) {
	h := NewLogHandler(slog.LevelInfo)
	logger := slog.New(h)
	logger.Info("too early")

	p := &fakeProgram{}
	h.SetProgram(p)
	logger.Debug("below level")
	logger.Warn("db slow", "ms", 900)

	require.Equal(t, []logRecordMsg{{Summary: "db slow (ms=900)", Level: slog.LevelWarn}}, p.records())
}

func TestLogHandlerAttrsAndGroups(t *testing.T) {
	h := NewLogHandler(slog.LevelInfo)
	p := &fakeProgram{}
	logger := slog.New(h).With("screen", "subsystems").WithGroup("load")
	h.SetProgram(p)

	logger.Error("failed", "err", "locked")
	require.Equal(t, []logRecordMsg{{
		Summary: "failed (screen=subsystems, load.err=locked)",
		Level:   slog.LevelError,
	}}, p.records())
}

func TestTee(t *testing.T) {
	var buf bytes.Buffer
	text := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	ui := NewLogHandler(slog.LevelWarn)
	p := &fakeProgram{}
	ui.SetProgram(p)

	logger := slog.New(Tee(text, ui))
	require.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	logger.Debug("loaded", "n", 3)
	logger.Warn("stale response")

	require.Contains(t, buf.String(), "msg=loaded n=3")
	require.Contains(t, buf.String(), `msg="stale response"`)
	require.Equal(t, []logRecordMsg{{Summary: "stale response", Level: slog.LevelWarn}}, p.records())
}
