package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
)

// LightDef describes one point light in the scene.
type LightDef struct {
	Pos       [3]float64 `json:"pos"`
	Color     [3]float64 `json:"color"`
	Intensity float64    `json:"intensity"`
	Range     float64    `json:"range"`
}

// Config holds all configurable printer, camera and render settings.
type Config struct {
	// Printer geometry
	HotendOffset float64 `json:"hotend_offset"` // X distance between nozzles, mm (Ultimaker 3: 18)
	NozzleWidth  float64 `json:"nozzle_width"`  // extrusion width, mm
	LayerHeight  float64 `json:"layer_height"`  // extrusion height, mm

	// Material colors, RGB in [0, 1]
	PrimaryColor   [3]float64 `json:"primary_color"`
	SecondaryColor [3]float64 `json:"secondary_color"`

	// Camera
	CameraPos [3]float64 `json:"camera_pos"`
	CameraRot [3]float64 `json:"camera_rot"` // pitch, roll, yaw in radians
	CameraFov float64    `json:"camera_fov"` // vertical fov, radians
	Aspect    float64    `json:"aspect"`     // 0 = derive from image size

	// Scene
	Lights  []LightDef `json:"lights"`
	Ambient float64    `json:"ambient"`

	// Render settings
	RenderWidth  int `json:"render_width"`
	RenderHeight int `json:"render_height"`
	Supersample  int `json:"supersample"`
	Workers      int `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Width   int
	Height  int
	Workers int
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Width > 0 {
		c.RenderWidth = flags.Width
	}
	if flags.Height > 0 {
		c.RenderHeight = flags.Height
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	// Printer defaults: common 0.4 mm nozzle, 0.2 mm layers
	if c.NozzleWidth <= 0 {
		c.NozzleWidth = 0.4
	}
	if c.LayerHeight <= 0 {
		c.LayerHeight = 0.2
	}

	if c.PrimaryColor == [3]float64{} {
		c.PrimaryColor = [3]float64{0.2, 0.45, 0.85}
	}
	if c.SecondaryColor == [3]float64{} {
		// PVA-ish, the usual support material on dual-extruder machines
		c.SecondaryColor = [3]float64{0.87, 0.84, 0.67}
	}

	if c.CameraFov <= 0 {
		c.CameraFov = 1.0472 // 60°
	}
	if c.Ambient <= 0 {
		c.Ambient = 0.25
	}
	if len(c.Lights) == 0 {
		c.Lights = []LightDef{{
			Pos:       [3]float64{120, -120, 200},
			Color:     [3]float64{1, 1, 1},
			Intensity: 40000,
		}}
	}

	// Defaults for render settings
	if c.RenderWidth <= 0 {
		c.RenderWidth = 640
	}
	if c.RenderHeight <= 0 {
		c.RenderHeight = 480
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}
