package app

import (
	"strings"

	"github.com/lx7/monotile/internal/backend"
	"github.com/lx7/monotile/internal/config"
)

// X keysyms used by the default bindings. Latin keys equal their ASCII
// codes.
const (
	xkSpace           = 0x0020
	xkPlus            = 0x002b
	xkComma           = 0x002c
	xkMinus           = 0x002d
	xkPeriod          = 0x002e
	xkLess            = 0x003c
	xkGreater         = 0x003e
	xk1               = 0x0031
	xkQ               = 0x0071
	xkZ               = 0x007a
	xkTab             = 0xff09
	xkReturn          = 0xff0d
	xkLeft            = 0xff51
	xkRight           = 0xff53
	xkTerminateServer = 0xfed5
)

// Binding maps an exact modifier set plus keysym onto an action. Matching is
// press only.
type Binding struct {
	Mods   backend.Mods
	Keysym uint32
	Action Action
}

// PrimaryMods is the configured main modifier.
func PrimaryMods(modifier string) backend.Mods {
	if modifier == "alt" {
		return backend.Mods{Alt: true}
	}
	return backend.Mods{Logo: true}
}

// Bindings builds the key table from config: the window management core, the
// terminal spawn, and view/move/toggle triples for each tag.
func Bindings(cfg config.Config) []Binding {
	mod := PrimaryMods(cfg.Modifier)
	modShift := mod
	modShift.Shift = true
	modToggle := modShift
	modToggle.Ctrl = true

	// The master factor combos add whichever of logo/alt is not the main
	// modifier.
	modFact := mod
	if cfg.Modifier == "alt" {
		modFact.Logo = true
	} else {
		modFact.Alt = true
	}

	terminal := strings.Fields(cfg.Terminal)
	step := cfg.ResizeStep

	bindings := []Binding{
		{mod, xkReturn, Action{Kind: ActionSpawn, Argv: terminal}},
		{mod, xkLeft, Action{Kind: ActionFocusStack, Arg: -1}},
		{mod, xkRight, Action{Kind: ActionFocusStack, Arg: 1}},
		{modShift, xkLeft, Action{Kind: ActionMoveStack, Arg: -1}},
		{modShift, xkRight, Action{Kind: ActionMoveStack, Arg: 1}},
		{mod, xkPlus, Action{Kind: ActionIncNMaster, Arg: 1}},
		{mod, xkMinus, Action{Kind: ActionIncNMaster, Arg: -1}},
		{modFact, xkLeft, Action{Kind: ActionSetMFact, Frac: -step}},
		{modFact, xkRight, Action{Kind: ActionSetMFact, Frac: step}},
		{modShift, xkZ, Action{Kind: ActionZoom}},
		{mod, xkTab, Action{Kind: ActionViewPrev}},
		{modShift, xkQ, Action{Kind: ActionKillClient}},
		{mod, xkSpace, Action{Kind: ActionToggleFullscreen}},
		{modShift, xkSpace, Action{Kind: ActionToggleFloating}},
		{mod, xkComma, Action{Kind: ActionFocusMon, Arg: -1}},
		{mod, xkPeriod, Action{Kind: ActionFocusMon, Arg: 1}},
		{modShift, xkLess, Action{Kind: ActionTagMon, Arg: -1}},
		{modShift, xkGreater, Action{Kind: ActionTagMon, Arg: 1}},
		{backend.Mods{Ctrl: true, Alt: true}, xkTerminateServer, Action{Kind: ActionQuit}},
	}

	for i := 0; i < min(cfg.TagCount, 9); i++ {
		key := uint32(xk1 + i)
		bindings = append(bindings,
			Binding{mod, key, Action{Kind: ActionView, Arg: i + 1}},
			Binding{modShift, key, Action{Kind: ActionTag, Arg: i + 1}},
			Binding{modToggle, key, Action{Kind: ActionToggleTag, Arg: i + 1}},
		)
	}
	return bindings
}

// Hotkeys lists the distinct grabs the bindings need from the backend.
func Hotkeys(bindings []Binding) []backend.Hotkey {
	seen := map[backend.Hotkey]struct{}{}
	var out []backend.Hotkey
	for _, b := range bindings {
		hk := backend.Hotkey{Mods: b.Mods, Keysym: b.Keysym}
		if _, ok := seen[hk]; ok {
			continue
		}
		seen[hk] = struct{}{}
		out = append(out, hk)
	}
	return out
}
