package room

import (
	"slices"

	"github.com/playperu/sniperrun/internal/match"
)

// appearance records what clients should render for one player.
type appearance struct {
	visible bool
	tint    match.Color
	params  map[string]bool
}

func newAppearance() *appearance {
	return &appearance{visible: true, params: make(map[string]bool)}
}

func (a *appearance) SetVisible(v bool)           { a.visible = v }
func (a *appearance) SetTint(c match.Color)       { a.tint = c }
func (a *appearance) SetBool(name string, v bool) { a.params[name] = v }

// SetTrigger is a no-op; triggers are transient and not part of snapshots.
func (a *appearance) SetTrigger(string) {}

// display tracks the outcome UI objects.
type display struct {
	visible map[string]bool
}

func newDisplay() *display {
	return &display{visible: make(map[string]bool)}
}

func (d *display) SetVisible(name string, v bool) { d.visible[name] = v }

// shown lists the visible UI objects in name order.
func (d *display) shown() []string {
	var out []string
	for name, v := range d.visible {
		if v {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}
