package display

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Settings tunes a Renderer. The zero value is not useful; start from
// DefaultSettings.
type Settings struct {
	// AllowAntialiasing lets quads with transformed exterior edges draw
	// with antialiasing.
	AllowAntialiasing bool `toml:"allow_antialiasing"`
	// ForceAntialiasing antialiases every quad.
	ForceAntialiasing bool `toml:"force_antialiasing"`

	// ShowOverdrawFeedback tints the root pass by how often each pixel
	// was drawn.
	ShowOverdrawFeedback bool `toml:"show_overdraw_feedback"`

	// ShouldClearRootRenderPass clears the root pass before drawing it.
	// Hosts that redraw every root pixel may turn it off.
	ShouldClearRootRenderPass bool `toml:"should_clear_root_render_pass"`

	// Debug fills opaque passes with blue before drawing and draws
	// unsupported quads in magenta instead of white.
	Debug bool `toml:"debug"`

	// PrecompileShaders compiles the GPU shaders when the renderer is
	// created instead of on first use.
	PrecompileShaders bool `toml:"precompile_shaders"`

	// FilterCacheSize bounds the number of built filter effects kept
	// across frames.
	FilterCacheSize int `toml:"filter_cache_size"`
}

// DefaultSettings returns the settings a renderer uses when none are
// given.
func DefaultSettings() Settings {
	return Settings{
		AllowAntialiasing:         true,
		ShouldClearRootRenderPass: true,
		FilterCacheSize:           64,
	}
}

// ParseSettings reads settings from TOML. Keys that are absent keep their
// default value.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("display: parse settings: %w", err)
	}
	if s.FilterCacheSize < 0 {
		return Settings{}, fmt.Errorf("display: parse settings: negative filter_cache_size %d", s.FilterCacheSize)
	}
	return s, nil
}

// LoadSettings reads settings from a TOML file.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("display: load settings: %w", err)
	}
	return ParseSettings(data)
}

// Marshal encodes s as TOML.
func (s Settings) Marshal() ([]byte, error) {
	return toml.Marshal(s)
}
