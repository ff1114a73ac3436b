package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"printwatch/internal/config"
	"printwatch/internal/gcode"
	"printwatch/internal/meshbuild"
	"printwatch/internal/postprocess"
	"printwatch/internal/render"

	"github.com/HugoSmits86/nativewebp"
)

func main() {
	gcodeFile := flag.String("gcode", "", "Path to the G-code file (required)")
	configFile := flag.String("config", "", "Path to config.json file")
	layers := flag.Int("layers", 0, "Number of layers to build from the bottom (0 = all)")
	out := flag.String("out", "render.webp", "Output image (.webp or .png)")
	width := flag.Int("width", 0, "Render width (default: 640)")
	height := flag.Int("height", 0, "Render height (default: 480)")
	workers := flag.Int("workers", 0, "Number of mesh workers (default: NumCPU)")

	flag.Parse()

	if *gcodeFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -gcode is required")
		os.Exit(1)
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		Width:   *width,
		Height:  *height,
		Workers: *workers,
	})

	start := time.Now()

	primary, secondary, err := gcode.ParseFile(*gcodeFile, cfg.HotendOffset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing G-code: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Parsed %s: %d primary layers, %d secondary layers\n",
		filepath.Base(*gcodeFile), len(primary), len(secondary))

	layerCount := *layers
	if layerCount <= 0 {
		layerCount = len(primary)
		if len(secondary) > layerCount {
			layerCount = len(secondary)
		}
	}

	obj, fragErrs := meshbuild.Build(primary, secondary, layerCount, meshbuild.Options{
		NozzleWidth: cfg.NozzleWidth,
		LayerHeight: cfg.LayerHeight,
		Primary:     cfg.PrimaryColor,
		Secondary:   cfg.SecondaryColor,
		Workers:     cfg.Workers,
	})
	for _, fe := range fragErrs {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", fe)
	}
	fmt.Printf("Mesh: %d vertices, %d triangles (%.1fs)\n",
		len(obj.Vertices), len(obj.Indices), time.Since(start).Seconds())

	img := renderScene(obj, cfg, cfg.RenderWidth, cfg.RenderHeight)

	if err := saveImage(*out, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *out)
}

// renderScene renders the object at supersampled resolution and
// downsamples to the target size.
func renderScene(obj *meshbuild.Object, cfg config.Config, w, h int) *image.NRGBA {
	sc := render.Scene{
		Camera: render.Camera{
			Pos:    cfg.CameraPos,
			Rot:    cfg.CameraRot,
			YFov:   cfg.CameraFov,
			Aspect: cfg.Aspect,
		},
		Ambient: cfg.Ambient,
	}
	for _, l := range cfg.Lights {
		sc.Lights = append(sc.Lights, render.Light{
			Pos:       l.Pos,
			Color:     l.Color,
			Intensity: l.Intensity,
			Range:     l.Range,
		})
	}

	ss := cfg.Supersample
	if ss < 1 {
		ss = 1
	}
	img := render.Render(obj, sc, w*ss, h*ss)
	if ss > 1 {
		img = postprocess.Downsample(img, w, h)
	}
	return img
}

// saveImage writes the image in the format implied by the extension.
func saveImage(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch filepath.Ext(path) {
	case ".png":
		err = png.Encode(f, img)
	default:
		err = nativewebp.Encode(f, img, nil)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
