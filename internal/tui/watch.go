// Package tui is the live drillctl dashboard.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/engine"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/network"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/ui"
)

// Server is what the dashboard polls and commands.
type Server interface {
	Status(ctx context.Context) (engine.StatusView, error)
	Send(ctx context.Context, in network.Intent) (network.Reply, error)
}

type watchModel struct {
	ctx     context.Context
	server  Server
	refresh time.Duration

	view    *engine.StatusView
	lastLog string
	err     error
}

type loadedMsg struct {
	view engine.StatusView
	err  error
}

type sentMsg struct {
	intent string
	reply  network.Reply
	err    error
}

type tickMsg time.Time

func newWatchModel(ctx context.Context, server Server, refresh time.Duration) watchModel {
	if refresh <= 0 {
		refresh = time.Second
	}
	return watchModel{ctx: ctx, server: server, refresh: refresh, lastLog: "Connecting…"}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.tickCmd())
}

func (m watchModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		v, err := m.server.Status(m.ctx)
		return loadedMsg{view: v, err: err}
	}
}

func (m watchModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m watchModel) sendCmd(in network.Intent) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.server.Send(m.ctx, in)
		return sentMsg{intent: in.Type, reply: reply, err: err}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tea.Batch(m.loadCmd(), m.tickCmd())
	case loadedMsg:
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Status failed: " + msg.err.Error()
			return m, nil
		}
		v := msg.view
		m.view = &v
		return m, nil
	case sentMsg:
		switch {
		case msg.err != nil:
			m.lastLog = fmt.Sprintf("%s failed: %v", msg.intent, msg.err)
		case !msg.reply.OK:
			m.lastLog = fmt.Sprintf("%s rejected: %s", msg.intent, msg.reply.Error)
		default:
			m.lastLog = msg.intent + " ok"
		}
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m, m.loadCmd()
		case "v", " ":
			return m, m.sendCmd(network.Intent{Type: "VENT"})
		case "s":
			return m, m.sendCmd(network.Intent{Type: "STRIKE"})
		case "d":
			if m.view != nil && m.view.Drilling {
				return m, m.sendCmd(network.Intent{Type: "STOP_DRILLING"})
			}
			return m, m.sendCmd(network.Intent{Type: "START_DRILLING"})
		case "c":
			return m, m.sendCmd(network.Intent{Type: "RETURN_TO_CITY"})
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	if m.view == nil {
		if m.err != nil {
			return ui.Bad.Render("Error: "+m.err.Error()) + "\n\nPress q to quit.\n"
		}
		return "Loading…\n"
	}
	v := m.view

	var b strings.Builder
	state := "parked"
	if v.Drilling {
		state = "drilling"
	}
	fmt.Fprintf(&b, "%s  %s\n\n", ui.Heading(ui.IconDrill, v.PlayerID), ui.Muted.Render(fmt.Sprintf("%s, %s", v.Location, state)))
	fmt.Fprintln(&b, ui.LabelValue("Depth", fmt.Sprintf("%sm in %s", humanize.Comma(int64(v.Depth)), v.Biome)))
	fmt.Fprintln(&b, ui.LabelValue("Heat", ui.HeatBar(v.Heat, v.Phase)))
	vent := ui.Muted.Render("cooling down")
	if v.VentReady {
		vent = ui.Good.Render("ready")
	}
	fmt.Fprintln(&b, ui.LabelValue("Vent", fmt.Sprintf("%s %s combo x%d", pulse(v.PulsePhase), vent, v.Combo)))
	fmt.Fprintln(&b, ui.LabelValue("Hull", ui.Integrity(v.Integrity)))
	fmt.Fprintln(&b, ui.LabelValue("Cargo", ui.Bundle(v.Resources)))
	fmt.Fprintln(&b, ui.LabelValue("Drones", fmt.Sprintf("%d idle, %d away", v.Drones, v.DronesAway)))

	if len(v.Jobs) > 0 {
		fmt.Fprintln(&b, "\n"+ui.H2.Render("Crafting"))
		for _, j := range v.Jobs {
			fmt.Fprintf(&b, "  %-10s %-12s %3.0f%% %s\n", j.Slot, j.PartID, j.Progress*100, readyOrLeft(j.Remaining))
		}
	}
	if len(v.Expeditions) > 0 {
		fmt.Fprintln(&b, "\n"+ui.H2.Render("Expeditions"))
		for _, x := range v.Expeditions {
			fmt.Fprintf(&b, "  %-8s %d drones → %-8s %s\n", x.Difficulty, x.DroneCount, x.Target, readyOrLeft(x.Remaining))
		}
	}

	fmt.Fprintln(&b, "\n"+ui.Muted.Render("v/space vent · s strike · d drill on/off · c city · r refresh · q quit"))
	fmt.Fprintln(&b, m.lastLog)
	return b.String()
}

// pulse draws the vent pulse as a marker on a 20-cell track.
func pulse(phase float64) string {
	pos := int(phase * 20)
	if pos < 0 {
		pos = 0
	}
	if pos > 19 {
		pos = 19
	}
	return "[" + strings.Repeat("·", pos) + "|" + strings.Repeat("·", 19-pos) + "]"
}

func readyOrLeft(remaining time.Duration) string {
	if remaining <= 0 {
		return ui.Good.Render("ready")
	}
	return ui.Muted.Render(remaining.Round(time.Second).String() + " left")
}

// RunWatch opens the dashboard until the user quits.
func RunWatch(ctx context.Context, server Server, refresh time.Duration, out io.Writer) error {
	m := newWatchModel(ctx, server, refresh)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
