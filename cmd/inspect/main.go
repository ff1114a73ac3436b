package main

import (
	"flag"
	"fmt"
	"os"

	"printwatch/internal/gcode"
)

func main() {
	gcodeFile := flag.String("gcode", "", "Path to the G-code file (required)")
	hotendOffset := flag.Float64("offset", 0, "X offset between nozzles in mm")
	verbose := flag.Bool("v", false, "Print per-layer details")

	flag.Parse()

	if *gcodeFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -gcode is required")
		os.Exit(1)
	}

	primary, secondary, err := gcode.ParseFile(*gcodeFile, *hotendOffset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	dump("primary", primary, *verbose)
	dump("secondary", secondary, *verbose)
}

func dump(name string, track gcode.Track, verbose bool) {
	fmt.Printf("%s: %d layers, %d lines, %d points\n",
		name, len(track), track.Lines(), track.Points())
	if len(track) == 0 {
		return
	}

	if z, ok := layerZ(track[0]); ok {
		fmt.Printf("  first layer z=%.3f\n", z)
	}
	if z, ok := layerZ(track[len(track)-1]); ok {
		fmt.Printf("  last layer  z=%.3f\n", z)
	}

	if !verbose {
		return
	}
	for i, layer := range track {
		points := 0
		for _, line := range layer {
			points += len(line)
		}
		z, _ := layerZ(layer)
		fmt.Printf("  layer %4d  z=%-8.3f %4d lines %6d points\n", i, z, len(layer), points)
	}
}

// layerZ reports the z of the first point in the layer.
func layerZ(layer gcode.Layer) (float64, bool) {
	for _, line := range layer {
		if len(line) > 0 {
			return line[0][2], true
		}
	}
	return 0, false
}
