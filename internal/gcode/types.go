package gcode

import "printwatch/internal/mathutil"

// Point3 is a nozzle position in millimeters.
type Point3 = mathutil.Vec3

// Polyline is one continuous extrusion move: the ordered points the
// nozzle visited while pushing material. Order defines the direction
// used later for offset normals. Always has at least 2 points once
// committed to a Layer.
type Polyline []Point3

// Layer holds all polylines extruded at (approximately) one z height.
type Layer []Polyline

// Track is the bottom-to-top layer sequence laid down by one extruder.
type Track []Layer

// Lines returns the total polyline count across all layers.
func (t Track) Lines() int {
	n := 0
	for _, layer := range t {
		n += len(layer)
	}
	return n
}

// Points returns the total point count across all polylines.
func (t Track) Points() int {
	n := 0
	for _, layer := range t {
		for _, line := range layer {
			n += len(line)
		}
	}
	return n
}
