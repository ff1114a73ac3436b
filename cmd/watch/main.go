package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"printwatch/internal/compare"
	"printwatch/internal/config"
	"printwatch/internal/gcode"
	"printwatch/internal/meshbuild"
	"printwatch/internal/photo"
	"printwatch/internal/postprocess"
	"printwatch/internal/render"

	"github.com/HugoSmits86/nativewebp"
)

func main() {
	gcodeFile := flag.String("gcode", "", "Path to the G-code file (required)")
	photoFile := flag.String("photo", "", "Path to the camera photo (required)")
	configFile := flag.String("config", "", "Path to config.json file")
	layers := flag.Int("layers", 0, "Layers expected to be printed so far (0 = all)")
	threshold := flag.Float64("threshold", 30, "Per-pixel mean channel difference counted as matching")
	emptyVal := flag.String("empty", "0,0,0,0", "Background pixel value in the photo, R,G,B,A")
	blendOut := flag.String("blend", "", "Optional path for a photo/render overlay image")
	workers := flag.Int("workers", 0, "Number of mesh workers (default: NumCPU)")

	flag.Parse()

	if *gcodeFile == "" || *photoFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -gcode and -photo are required")
		os.Exit(1)
	}

	var empty compare.Empty
	if _, err := fmt.Sscanf(*emptyVal, "%d,%d,%d,%d", &empty[0], &empty[1], &empty[2], &empty[3]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: bad -empty value %q (want R,G,B,A)\n", *emptyVal)
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
	cfg.Resolve(config.Flags{Workers: *workers})

	real, err := photo.Load(*photoFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	w, h := real.Bounds().Dx(), real.Bounds().Dy()

	primary, secondary, err := gcode.ParseFile(*gcodeFile, cfg.HotendOffset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing G-code: %v\n", err)
		os.Exit(1)
	}

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

	// Render at the photo's resolution so pixels line up 1:1
	rendered := renderScene(obj, cfg, w, h)

	score, err := compare.Score(real, rendered, empty, *threshold)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Match: %.4f (%d layers, %d triangles)\n", score, layerCount, len(obj.Indices))

	if *blendOut != "" {
		blend, err := compare.Blend(real, rendered)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := saveImage(*blendOut, blend); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *blendOut)
	}
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
