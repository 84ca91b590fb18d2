package diagram

import (
	"github.com/ha1tch/hsm-toolkit/pkg/interact"
	"github.com/ha1tch/hsm-toolkit/pkg/layout"
	"github.com/ha1tch/hsm-toolkit/pkg/render"
	"github.com/ha1tch/hsm-toolkit/pkg/route"
)

// Config bundles the settings of every pass.
type Config struct {
	Layout   layout.Config
	Route    route.Config
	Interact interact.Config
	Theme    render.Theme

	// CornerRadius rounds node rectangles when painting.
	CornerRadius float64
	// DefaultLabel names transitions created by the wizard.
	DefaultLabel string
}

// DefaultConfig returns settings for pixel canvases.
func DefaultConfig() Config {
	return Config{
		Layout:       layout.DefaultConfig(),
		Route:        route.DefaultConfig(),
		Interact:     interact.DefaultConfig(),
		Theme:        render.DefaultTheme(),
		CornerRadius: 6,
		DefaultLabel: "event",
	}
}

// TerminalConfig returns settings for character-cell hosts.
func TerminalConfig() Config {
	return Config{
		Layout:       layout.TerminalConfig(),
		Route:        route.TerminalConfig(),
		Interact:     interact.TerminalConfig(),
		Theme:        render.DefaultTheme(),
		DefaultLabel: "event",
	}
}
