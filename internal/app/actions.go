package app

import (
	"log/slog"
	"os/exec"
	"syscall"

	"github.com/lx7/monotile/internal/bus"
	"github.com/lx7/monotile/internal/shell"
	"github.com/lx7/monotile/internal/wm"
)

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionQuit
	ActionSpawn
	ActionFocusStack
	ActionMoveStack
	ActionIncNMaster
	ActionSetMFact
	ActionZoom
	ActionView
	ActionViewPrev
	ActionTag
	ActionToggleTag
	ActionKillClient
	ActionToggleFloating
	ActionToggleFullscreen
	ActionFocusMon
	ActionTagMon
	ActionDump
)

// Action is one input-triggered operation. Arg is a 1-based tag index for
// the tag actions and a signed step elsewhere; Frac is the master factor
// delta; Argv is the command line for ActionSpawn.
type Action struct {
	Kind ActionKind
	Arg  int
	Frac float64
	Argv []string
}

// dispatch runs one action against the monitor and re-syncs focus. The
// returned flag asks the loop to stop.
func (m *Model) dispatch(a Action) (quit bool) {
	switch a.Kind {
	case ActionQuit:
		return true
	case ActionSpawn:
		spawn(a.Argv)
	case ActionFocusStack:
		if id, ok := m.mon.FocusCycle(a.Arg); ok {
			m.focus(id)
		}
	case ActionMoveStack:
		m.mon.MoveActiveInStack(a.Arg)
	case ActionIncNMaster:
		m.mon.AdjustMasterCount(a.Arg)
	case ActionSetMFact:
		m.mon.AdjustMasterFactor(a.Frac)
	case ActionZoom:
		m.mon.ZoomActive()
	case ActionView:
		m.mon.SetActiveTag(a.Arg - 1)
	case ActionViewPrev:
		m.mon.TogglePrevTag()
	case ActionTag:
		m.mon.MoveActiveToTag(a.Arg - 1)
	case ActionToggleTag:
		m.mon.ToggleActiveTag(a.Arg - 1)
	case ActionKillClient:
		m.mon.KillActive()
	case ActionToggleFloating:
		m.mon.ToggleActiveFloating()
	case ActionDump:
		m.dump()
	case ActionToggleFullscreen, ActionFocusMon, ActionTagMon:
		// Accepted but inert: fullscreen and extra monitors are not
		// implemented.
	}
	m.refocus()
	return false
}

// focus moves keyboard focus to id. While an exclusive layer surface holds
// the keyboard, window focus stays cleared instead.
func (m *Model) focus(id shell.WindowID) {
	if m.mon.ExclusiveLayerSurface() != nil {
		m.mon.SetFocus(shell.WindowID{})
		return
	}
	m.mon.SetFocus(id)
}

func (m *Model) refocus() {
	m.focus(m.mon.ActiveID())
}

// action translates a bus command into an Action. A zero Arg defaults to one
// step for the stepped commands; tag commands pass Arg through as a 1-based
// index.
func (m *Model) action(c bus.Command) (Action, bool) {
	step := c.Arg
	if step == 0 {
		step = 1
	}
	switch c.Name {
	case "quit":
		return Action{Kind: ActionQuit}, true
	case "focus":
		return Action{Kind: ActionFocusStack, Arg: step}, true
	case "move":
		return Action{Kind: ActionMoveStack, Arg: step}, true
	case "zoom":
		return Action{Kind: ActionZoom}, true
	case "kill":
		return Action{Kind: ActionKillClient}, true
	case "toggle-floating":
		return Action{Kind: ActionToggleFloating}, true
	case "view":
		return Action{Kind: ActionView, Arg: c.Arg}, true
	case "view-prev":
		return Action{Kind: ActionViewPrev}, true
	case "tag":
		return Action{Kind: ActionTag, Arg: c.Arg}, true
	case "toggle-tag":
		return Action{Kind: ActionToggleTag, Arg: c.Arg}, true
	case "nmaster":
		return Action{Kind: ActionIncNMaster, Arg: step}, true
	case "mfact":
		return Action{Kind: ActionSetMFact, Frac: float64(step) * m.cfg.ResizeStep}, true
	case "dump":
		return Action{Kind: ActionDump}, true
	}
	return Action{}, false
}

func (m *Model) command(c bus.Command) (wm.Model, wm.Render) {
	a, ok := m.action(c)
	if !ok {
		slog.Error("Failed to handle command", "name", c.Name)
		return m, nil
	}
	if m.dispatch(a) {
		return m, wm.Quit
	}
	return m, m.changed()
}

// spawn launches a detached child in its own session; children outlive the
// window manager.
func spawn(argv []string) {
	if len(argv) == 0 {
		return
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		slog.Error("Failed to spawn", "command", argv[0], "error", err)
		return
	}
	go cmd.Wait()
}
