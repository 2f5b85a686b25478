package config

import (
	"github.com/lx7/monotile/internal/render"
	"github.com/lx7/monotile/internal/shell"
)

var defaultConfig = Config{
	FocusFollowsCursor: true,
	BorderWidth:        2,
	SingleBorder:       false,
	Gap:                0,
	Scale:              1.0,
	TagCount:           9,
	MasterFactor:       0.54,
	MasterCount:        1,
	ResizeStep:         0.01,
	RepeatRate:         30,
	RepeatDelay:        300,
	Terminal:           "xterm",
	Modifier:           "logo",
	Colors: Colors{
		Background: "#444444ff",
		Root:       "#000000ff",
		Border:     "#444444ff",
		Focus:      "#458588ff",
		Urgent:     "#ff0000ff",
	},
	FloatingRadius: 12,
	TiledRadius:    0,
	Shadow: Shadow{
		Color:    "#00000073",
		Softness: 25,
		Spread:   5,
		OffsetX:  0,
		OffsetY:  5,
	},
}

type Config struct {
	FocusFollowsCursor bool    `json:"focus_follows_cursor" yaml:"focus_follows_cursor" toml:"focus_follows_cursor"`
	BorderWidth        int     `json:"border_width" yaml:"border_width" toml:"border_width"`
	SingleBorder       bool    `json:"single_border" yaml:"single_border" toml:"single_border"`
	Gap                int     `json:"gap" yaml:"gap" toml:"gap"`
	Scale              float64 `json:"scale" yaml:"scale" toml:"scale"`
	TagCount           int     `json:"tag_count" yaml:"tag_count" toml:"tag_count"`
	MasterFactor       float64 `json:"master_factor" yaml:"master_factor" toml:"master_factor"`
	MasterCount        int     `json:"master_count" yaml:"master_count" toml:"master_count"`
	ResizeStep         float64 `json:"resize_step" yaml:"resize_step" toml:"resize_step"`
	RepeatRate         int     `json:"repeat_rate" yaml:"repeat_rate" toml:"repeat_rate"`
	RepeatDelay        int     `json:"repeat_delay" yaml:"repeat_delay" toml:"repeat_delay"`
	Terminal           string  `json:"terminal" yaml:"terminal" toml:"terminal"`
	Modifier           string  `json:"modifier" yaml:"modifier" toml:"modifier"` // [logo, alt]
	Colors             Colors  `json:"colors" yaml:"colors" toml:"colors"`
	FloatingRadius     float64 `json:"floating_radius" yaml:"floating_radius" toml:"floating_radius"`
	TiledRadius        float64 `json:"tiled_radius" yaml:"tiled_radius" toml:"tiled_radius"`
	Shadow             Shadow  `json:"shadow" yaml:"shadow" toml:"shadow"`
}

type Colors struct {
	Background string `json:"background" yaml:"background" toml:"background"`
	Root       string `json:"root" yaml:"root" toml:"root"`
	Border     string `json:"border" yaml:"border" toml:"border"`
	Focus      string `json:"focus" yaml:"focus" toml:"focus"`
	Urgent     string `json:"urgent" yaml:"urgent" toml:"urgent"`
}

type Shadow struct {
	Color    string `json:"color" yaml:"color" toml:"color"`
	Softness int    `json:"softness" yaml:"softness" toml:"softness"`
	Spread   int    `json:"spread" yaml:"spread" toml:"spread"`
	OffsetX  int    `json:"offset_x" yaml:"offset_x" toml:"offset_x"`
	OffsetY  int    `json:"offset_y" yaml:"offset_y" toml:"offset_y"`
}

// Metrics is the spacing subset the layout engine consumes.
func (c Config) Metrics() shell.Metrics {
	return shell.Metrics{
		Gap:          c.Gap,
		BorderWidth:  c.BorderWidth,
		SingleBorder: c.SingleBorder,
	}
}

// Layout is the initial per-tag arrangement.
func (c Config) Layout() shell.TilingLayout {
	return shell.TilingLayout{
		MasterCount:  c.MasterCount,
		MasterFactor: c.MasterFactor,
	}
}

// Style resolves the visual parameters for the composer. It fails on colors
// Normalize would have rejected.
func (c Config) Style() (render.Style, error) {
	s := render.Style{
		BorderWidth:    c.BorderWidth,
		SingleBorder:   c.SingleBorder,
		FloatRadius:    c.FloatingRadius,
		TiledRadius:    c.TiledRadius,
		ShadowSoftness: c.Shadow.Softness,
		ShadowSpread:   c.Shadow.Spread,
		ShadowOffset:   shell.Point{X: c.Shadow.OffsetX, Y: c.Shadow.OffsetY},
	}

	var err error
	for _, f := range []struct {
		dst *render.Color
		hex string
	}{
		{&s.Background, c.Colors.Background},
		{&s.Root, c.Colors.Root},
		{&s.Border, c.Colors.Border},
		{&s.Focus, c.Colors.Focus},
		{&s.Urgent, c.Colors.Urgent},
		{&s.ShadowColor, c.Shadow.Color},
	} {
		if *f.dst, err = render.ParseColor(f.hex); err != nil {
			return render.Style{}, err
		}
	}
	return s, nil
}

func normalize(cfg Config) (Config, error) {
	cfg.MasterFactor = min(max(cfg.MasterFactor, 0.1), 0.9)
	cfg.MasterCount = max(cfg.MasterCount, 1)
	cfg.TagCount = min(max(cfg.TagCount, 1), 32)
	cfg.Gap = max(cfg.Gap, 0)
	cfg.BorderWidth = max(cfg.BorderWidth, 0)
	cfg.FloatingRadius = max(cfg.FloatingRadius, 0)
	cfg.TiledRadius = max(cfg.TiledRadius, 0)
	cfg.Shadow.Softness = max(cfg.Shadow.Softness, 0)
	cfg.Shadow.Spread = max(cfg.Shadow.Spread, 0)
	if cfg.Scale <= 0 {
		cfg.Scale = defaultConfig.Scale
	}
	if cfg.ResizeStep <= 0 {
		cfg.ResizeStep = defaultConfig.ResizeStep
	}
	if cfg.RepeatRate <= 0 {
		cfg.RepeatRate = defaultConfig.RepeatRate
	}
	if cfg.RepeatDelay <= 0 {
		cfg.RepeatDelay = defaultConfig.RepeatDelay
	}
	if cfg.Terminal == "" {
		cfg.Terminal = defaultConfig.Terminal
	}
	if cfg.Modifier != "logo" && cfg.Modifier != "alt" {
		cfg.Modifier = defaultConfig.Modifier
	}

	// Parsing for the side effect: a broken color should fail loudly here,
	// not at first compose.
	if _, err := cfg.Style(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
