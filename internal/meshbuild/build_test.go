package meshbuild

import (
	"reflect"
	"testing"

	"printwatch/internal/gcode"
)

var testOpts = Options{
	NozzleWidth: 0.4,
	LayerHeight: 0.2,
	Primary:     Color{1, 0, 0},
	Secondary:   Color{0, 0, 1},
	Workers:     1,
}

func twoLineTrack() gcode.Track {
	return gcode.Track{
		gcode.Layer{
			gcode.Polyline{{0, 0, 0.2}, {0, 10, 0.2}},
			gcode.Polyline{{5, 0, 0.2}, {5, 10, 0.2}, {10, 10, 0.2}},
		},
	}
}

func TestBuildIndexRebasing(t *testing.T) {
	obj, errs := Build(twoLineTrack(), nil, 1, testOpts)
	if len(errs) != 0 {
		t.Fatalf("unexpected fragment errors: %v", errs)
	}

	// First line: 2 points → 4 outline points → 8 vertices.
	// Second line: 3 points → 6 outline points → 12 vertices.
	if len(obj.Vertices) != 20 {
		t.Fatalf("got %d vertices, want 20", len(obj.Vertices))
	}
	if len(obj.Colors) != len(obj.Vertices) {
		t.Fatalf("got %d colors for %d vertices", len(obj.Colors), len(obj.Vertices))
	}

	// 12 triangles for the first ribbon, 20 for the second
	if len(obj.Indices) != 32 {
		t.Fatalf("got %d triangles, want 32", len(obj.Indices))
	}

	// First fragment's indices stay below its vertex count; the second
	// fragment's indices all land in its own vertex range.
	for ti, tri := range obj.Indices[:12] {
		for _, i := range tri {
			if i < 0 || i >= 8 {
				t.Errorf("fragment 0 triangle %d index %d outside [0, 8)", ti, i)
			}
		}
	}
	for ti, tri := range obj.Indices[12:] {
		for _, i := range tri {
			if i < 8 || i >= 20 {
				t.Errorf("fragment 1 triangle %d index %d outside [8, 20)", ti, i)
			}
		}
	}
}

func TestBuildColorsPerTrack(t *testing.T) {
	primary := twoLineTrack()
	secondary := gcode.Track{
		gcode.Layer{gcode.Polyline{{20, 0, 0.2}, {20, 10, 0.2}}},
	}
	obj, errs := Build(primary, secondary, 1, testOpts)
	if len(errs) != 0 {
		t.Fatalf("unexpected fragment errors: %v", errs)
	}

	// Primary vertices come first (20), then the secondary ribbon (8)
	if len(obj.Colors) != 28 {
		t.Fatalf("got %d colors, want 28", len(obj.Colors))
	}
	for i, c := range obj.Colors[:20] {
		if c != testOpts.Primary {
			t.Fatalf("vertex %d color = %v, want primary %v", i, c, testOpts.Primary)
		}
	}
	for i, c := range obj.Colors[20:] {
		if c != testOpts.Secondary {
			t.Fatalf("vertex %d color = %v, want secondary %v", 20+i, c, testOpts.Secondary)
		}
	}
}

func TestBuildSkipsShortLines(t *testing.T) {
	track := gcode.Track{
		gcode.Layer{
			gcode.Polyline{{0, 0, 0.2}},
			gcode.Polyline{{5, 0, 0.2}, {5, 10, 0.2}},
		},
	}
	obj, errs := Build(track, nil, 1, testOpts)
	if len(errs) != 0 {
		t.Fatalf("unexpected fragment errors: %v", errs)
	}
	if len(obj.Vertices) != 8 {
		t.Errorf("got %d vertices, want 8 (single-point line skipped)", len(obj.Vertices))
	}
}

func TestBuildLayerCount(t *testing.T) {
	track := gcode.Track{
		gcode.Layer{gcode.Polyline{{0, 0, 0.2}, {0, 10, 0.2}}},
		gcode.Layer{gcode.Polyline{{0, 0, 0.4}, {0, 10, 0.4}}},
		gcode.Layer{gcode.Polyline{{0, 0, 0.6}, {0, 10, 0.6}}},
	}

	one, _ := Build(track, nil, 1, testOpts)
	if len(one.Vertices) != 8 {
		t.Errorf("1 layer: got %d vertices, want 8", len(one.Vertices))
	}

	// Requesting more layers than exist builds everything
	all, _ := Build(track, nil, 100, testOpts)
	if len(all.Vertices) != 24 {
		t.Errorf("all layers: got %d vertices, want 24", len(all.Vertices))
	}
}

func TestBuildEmptyTracks(t *testing.T) {
	obj, errs := Build(nil, nil, 10, testOpts)
	if len(errs) != 0 {
		t.Fatalf("unexpected fragment errors: %v", errs)
	}
	if len(obj.Vertices) != 0 || len(obj.Indices) != 0 {
		t.Errorf("empty tracks produced %d vertices, %d triangles",
			len(obj.Vertices), len(obj.Indices))
	}
}

func TestBuildParallelMatchesSerial(t *testing.T) {
	primary := gcode.Track{}
	for l := 0; l < 4; l++ {
		var layer gcode.Layer
		z := 0.2 * float64(l+1)
		for i := 0; i < 8; i++ {
			x := float64(i)
			layer = append(layer, gcode.Polyline{{x, 0, z}, {x, 10, z}, {x + 1, 12, z}})
		}
		primary = append(primary, layer)
	}

	serialOpts := testOpts
	serialOpts.Workers = 1
	parallelOpts := testOpts
	parallelOpts.Workers = 4

	serial, _ := Build(primary, nil, 4, serialOpts)
	parallel, _ := Build(primary, nil, 4, parallelOpts)

	if !reflect.DeepEqual(serial, parallel) {
		t.Error("parallel build differs from serial build")
	}
}
