package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/engine"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/network"
)

type fakeServer struct {
	view engine.StatusView
	sent []string
	deny bool
}

func (f *fakeServer) Status(ctx context.Context) (engine.StatusView, error) {
	return f.view, nil
}

func (f *fakeServer) Send(ctx context.Context, in network.Intent) (network.Reply, error) {
	f.sent = append(f.sent, in.Type)
	if f.deny {
		return network.Reply{Intent: in.Type, Rejection: true, Error: "vent is cooling down"}, nil
	}
	return network.Reply{Intent: in.Type, OK: true}, nil
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWatchRendersLoadedStatus(t *testing.T) {
	// Setup
	srv := &fakeServer{view: engine.StatusView{PlayerID: "pilot", Depth: 1250, Biome: "Clay Layer", Heat: 40, Integrity: 100}}
	m := newWatchModel(context.Background(), srv, time.Second)

	// Act
	next, _ := m.Update(m.loadCmd()())
	out := next.View()

	// Assert
	if !strings.Contains(out, "pilot") || !strings.Contains(out, "1,250m in Clay Layer") {
		t.Errorf("dashboard missing status lines:\n%s", out)
	}
}

func TestWatchKeysSendIntents(t *testing.T) {
	// Setup
	srv := &fakeServer{view: engine.StatusView{Drilling: true}}
	m := newWatchModel(context.Background(), srv, time.Second)
	next, _ := m.Update(m.loadCmd()())
	m = next.(watchModel)

	// Act
	for _, k := range []string{"v", "s", "d"} {
		_, cmd := m.Update(key(k))
		if cmd == nil {
			t.Fatalf("key %q produced no command", k)
		}
		cmd()
	}

	// Assert
	want := []string{"VENT", "STRIKE", "STOP_DRILLING"}
	if strings.Join(srv.sent, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, srv.sent)
	}
}

func TestWatchReportsRejectionsAndErrors(t *testing.T) {
	// Setup
	srv := &fakeServer{deny: true}
	m := newWatchModel(context.Background(), srv, time.Second)

	// Act
	rejected, _ := m.Update(m.sendCmd(network.Intent{Type: "VENT"})())
	failed, _ := m.Update(sentMsg{intent: "STRIKE", err: errors.New("connection refused")})

	// Assert
	if got := rejected.(watchModel).lastLog; got != "VENT rejected: vent is cooling down" {
		t.Errorf("unexpected log line %q", got)
	}
	if got := failed.(watchModel).lastLog; !strings.Contains(got, "connection refused") {
		t.Errorf("unexpected log line %q", got)
	}
}
