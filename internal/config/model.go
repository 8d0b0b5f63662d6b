package config

import (
	"github.com/google/uuid"
)

var defaultConfig = Config{
	PollInterval: 60,
	Panels:       []Panel{},
	HTTP: HTTP{
		Enable: true,
	},
	Notify: Notify{
		Enable: false,
	},
}

type Config struct {
	// PollInterval is the client-list re-read period in seconds. A safety net
	// against missed property notifications; 0 disables polling.
	PollInterval int    `json:"poll_interval" yaml:"poll_interval"`
	Panels       []Panel `json:"panels" yaml:"panels"`
	HTTP         HTTP    `json:"http" yaml:"http"`
	Notify       Notify  `json:"notify" yaml:"notify"`
}

type Panel struct {
	UUID   string `json:"uuid" yaml:"uuid"`
	Height int    `json:"height" yaml:"height"`
	// Position is "top" or "bottom".
	Position string `json:"position" yaml:"position"`

	IconSize      int `json:"icon_size" yaml:"icon_size"`
	MaxCellWidth  int `json:"max_cell_width" yaml:"max_cell_width"`
	MaxCellHeight int `json:"max_cell_height" yaml:"max_cell_height"`

	ShowAllDesktops bool `json:"show_all_desktops" yaml:"show_all_desktops"`
	ShowIconified   bool `json:"show_iconified" yaml:"show_iconified"`
	ShowMapped      bool `json:"show_mapped" yaml:"show_mapped"`
	AcceptSkipPager bool `json:"accept_skip_pager" yaml:"accept_skip_pager"`
	IconsOnly       bool `json:"icons_only" yaml:"icons_only"`
	Tooltips        bool `json:"tooltips" yaml:"tooltips"`
	MouseWheel      bool `json:"mouse_wheel" yaml:"mouse_wheel"`

	UrgencyFlash bool `json:"urgency_flash" yaml:"urgency_flash"`
	// FlashInterval is the urgency flash half-period in milliseconds.
	FlashInterval int `json:"flash_interval" yaml:"flash_interval"`
}

type HTTP struct {
	Enable bool `json:"enable" yaml:"enable"`
}

type Notify struct {
	Enable bool `json:"enable" yaml:"enable"`
}

// maxPanelHeight bounds configured strip heights. Panel geometry feeds
// 16-bit X coordinates, so an absurd value must never reach window creation.
const maxPanelHeight = 1024

func defaultPanel() Panel {
	return Panel{
		Height:        28,
		Position:      "bottom",
		IconSize:      24,
		MaxCellWidth:  200,
		MaxCellHeight: 28,
		ShowIconified: true,
		ShowMapped:    true,
		Tooltips:      true,
		MouseWheel:    true,
		UrgencyFlash:  true,
		FlashInterval: 500,
	}
}

// Normalize fills missing panel UUIDs and clamps geometry so the rest of the
// program never sees a zero panel. A config with no panels gets one default.
func Normalize(cfg Config) Config {
	if len(cfg.Panels) == 0 {
		cfg.Panels = []Panel{defaultPanel()}
	}
	for i := range cfg.Panels {
		p := &cfg.Panels[i]
		if p.UUID == "" {
			p.UUID = uuid.NewString()
		}
		def := defaultPanel()
		if p.Height <= 0 {
			p.Height = def.Height
		}
		if p.Height > maxPanelHeight {
			p.Height = maxPanelHeight
		}
		if p.Position != "top" && p.Position != "bottom" {
			p.Position = def.Position
		}
		if p.IconSize <= 0 {
			p.IconSize = def.IconSize
		}
		if p.MaxCellWidth <= 0 {
			p.MaxCellWidth = def.MaxCellWidth
		}
		if p.MaxCellHeight <= 0 {
			p.MaxCellHeight = def.MaxCellHeight
		}
		if p.FlashInterval <= 0 {
			p.FlashInterval = def.FlashInterval
		}
	}
	if cfg.PollInterval < 0 {
		cfg.PollInterval = 0
	}
	return cfg
}
