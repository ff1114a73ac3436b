package gcode

import (
	"reflect"
	"strings"
	"testing"
)

func parseString(t *testing.T, src string, hotendOffset float64) (Track, Track) {
	t.Helper()
	primary, secondary, err := Parse(strings.NewReader(src), hotendOffset)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return primary, secondary
}

func TestParseSingleLine(t *testing.T) {
	src := `M205
G1 X10 Y0 Z0.2 E1
G1 X10 Y10 Z0.2 E2
G0 X0 Y0 Z0.2
`
	primary, secondary := parseString(t, src, 0)

	want := Track{
		Layer{Polyline{{10, 0, 0.2}, {10, 10, 0.2}}},
	}
	if !reflect.DeepEqual(primary, want) {
		t.Errorf("primary = %v, want %v", primary, want)
	}
	if len(secondary) != 0 {
		t.Errorf("secondary has %d layers, want 0", len(secondary))
	}
}

func TestParseIgnoresSetupBeforeMarker(t *testing.T) {
	src := `G1 X50 Y50 Z10 E5
G1 X60 Y50 Z10 E6
M205
G0 X0 Y0 Z0.2
G1 X10 Y0 Z0.2 E1
G1 X10 Y10 Z0.2 E2
`
	primary, _ := parseString(t, src, 0)

	// The travel seed before the first extrusion is dropped with the
	// pre-printing layer accumulator.
	want := Track{
		Layer{Polyline{{10, 0, 0.2}, {10, 10, 0.2}}},
	}
	if !reflect.DeepEqual(primary, want) {
		t.Errorf("primary = %v, want %v", primary, want)
	}
}

func TestParseComments(t *testing.T) {
	src := `M205 ;start
; full comment line
G1 X10 Y0 Z0.2 E1 ; move
G1 X10 Y10 Z0.2 E2;no space
`
	primary, _ := parseString(t, src, 0)
	if len(primary) != 1 || len(primary[0]) != 1 || len(primary[0][0]) != 2 {
		t.Fatalf("primary = %v, want one layer with one 2-point line", primary)
	}
}

func TestParseRetractionBalance(t *testing.T) {
	// E deltas +1, -3, +1, +1, +2. After the retraction of 3 the
	// balance must refill before material counts as extruded again:
	// only the first and last moves extrude.
	src := `M205
G1 X10 Y0 Z0.2 E1
G1 X20 Y0 Z0.2 E-2
G1 X30 Y0 Z0.2 E-1
G1 X40 Y0 Z0.2 E0
G1 X50 Y0 Z0.2 E2
`
	primary, _ := parseString(t, src, 0)

	// Moves 2-4 are travel: each reseeds the open line, so the final
	// extrusion forms one segment from the last travel point.
	want := Track{
		Layer{Polyline{{40, 0, 0.2}, {50, 0, 0.2}}},
	}
	if !reflect.DeepEqual(primary, want) {
		t.Errorf("primary = %v, want %v", primary, want)
	}
}

func TestParseRetractRecoverCycle(t *testing.T) {
	// A plain retract/unretract pair (E-only moves) must leave the
	// balance unchanged so printing resumes immediately after.
	src := `M205
G1 X10 Y0 Z0.2 E1
G1 E-2.5
G0 X0 Y10 Z0.2
G1 E1
G1 X10 Y10 Z0.2 E2
`
	primary, _ := parseString(t, src, 0)

	want := Track{
		Layer{Polyline{{0, 10, 0.2}, {10, 10, 0.2}}},
	}
	if !reflect.DeepEqual(primary, want) {
		t.Errorf("primary = %v, want %v", primary, want)
	}
}

func TestParseLayerSplit(t *testing.T) {
	src := `M205
G1 X10 Y0 Z0.2 E1
G1 X10 Y10 Z0.2 E2
G0 X0 Y0 Z0.4
G1 X0 Y10 Z0.4 E3
G1 X10 Y10 Z0.4 E4
`
	primary, _ := parseString(t, src, 0)

	if len(primary) != 2 {
		t.Fatalf("got %d layers, want 2", len(primary))
	}
	if z := primary[0][0][0][2]; z != 0.2 {
		t.Errorf("first layer z = %v, want 0.2", z)
	}
	if z := primary[1][0][0][2]; z != 0.4 {
		t.Errorf("second layer z = %v, want 0.4", z)
	}
}

func TestParseFirstLayerDiscarded(t *testing.T) {
	// The seal of the pre-printing accumulator must never surface:
	// every returned layer holds real extrusion geometry.
	src := `M205
G0 X0 Y0 Z0.2
G1 X10 Y0 Z0.2 E1
G1 X10 Y10 Z0.2 E2
`
	primary, _ := parseString(t, src, 0)
	if len(primary) != 1 {
		t.Fatalf("got %d layers, want 1", len(primary))
	}
	for _, line := range primary[0] {
		if len(line) < 2 {
			t.Errorf("layer contains %d-point line %v", len(line), line)
		}
	}
}

func TestParseToolChange(t *testing.T) {
	src := `M205
G1 X10 Y0 Z0.2 E1
G1 X10 Y10 Z0.2 E2
T1
G1 X30 Y0 Z0.2 E1
G1 X30 Y10 Z0.2 E2
T0
G1 X10 Y20 Z0.2 E3
`
	primary, secondary := parseString(t, src, 18)

	wantPrimary := Track{
		Layer{
			Polyline{{10, 0, 0.2}, {10, 10, 0.2}, {10, 20, 0.2}},
		},
	}
	if !reflect.DeepEqual(primary, wantPrimary) {
		t.Errorf("primary = %v, want %v", primary, wantPrimary)
	}

	// Secondary X coordinates carry the hotend offset
	wantSecondary := Track{
		Layer{
			Polyline{{48, 0, 0.2}, {48, 10, 0.2}},
		},
	}
	if !reflect.DeepEqual(secondary, wantSecondary) {
		t.Errorf("secondary = %v, want %v", secondary, wantSecondary)
	}
}

func TestParseToolChangeRestoresState(t *testing.T) {
	// The secondary extruder retracts, tools swap back and forth, and
	// the retraction must still be in effect when T1 resumes.
	src := `M205
T1
G1 X10 Y0 Z0.2 E1
G1 X10 Y10 Z0.2 E2
G1 X20 Y10 Z0.2 E-1
T0
G1 X50 Y50 Z0.2 E1
G1 X50 Y60 Z0.2 E2
T1
G1 X20 Y20 Z0.2 E-0.5
G1 X20 Y30 Z0.2 E1
`
	_, secondary := parseString(t, src, 0)

	// After the E2→E-1 retraction (balance -3), the E-1→E-0.5 move
	// (+0.5, balance -2.5) must not extrude; E-0.5→E1 (+1.5, balance
	// -1) must not either. Only the first two moves are recorded.
	want := Track{
		Layer{Polyline{{10, 0, 0.2}, {10, 10, 0.2}}},
	}
	if !reflect.DeepEqual(secondary, want) {
		t.Errorf("secondary = %v, want %v", secondary, want)
	}
}

func TestParseRedundantToolSelect(t *testing.T) {
	src := `M205
T0
G1 X10 Y0 Z0.2 E1
T0
G1 X10 Y10 Z0.2 E2
`
	primary, _ := parseString(t, src, 0)
	want := Track{
		Layer{Polyline{{10, 0, 0.2}, {10, 10, 0.2}}},
	}
	if !reflect.DeepEqual(primary, want) {
		t.Errorf("primary = %v, want %v", primary, want)
	}
}

func TestParseUnknownCommandsIgnored(t *testing.T) {
	src := `M140 S60
G28
M205
M106 S255
G1 X10 Y0 Z0.2 E1
G92 E0
G1 X10 Y10 Z0.2 E2
`
	primary, _ := parseString(t, src, 0)
	if len(primary) != 1 {
		t.Fatalf("got %d layers, want 1", len(primary))
	}
}

func TestParseMalformedOperand(t *testing.T) {
	tests := []string{
		"M205\nG1 Xabc Y0 E1\n",
		"M205\nG1 X10 Y0 E1..5\n",
		"M205\nG1 X Y0 E1\n",
	}
	for _, src := range tests {
		if _, _, err := Parse(strings.NewReader(src), 0); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", src)
		}
	}
}

func TestParseFeedrateNotNumericChecked(t *testing.T) {
	// Only X/Y/Z/E operands carry geometry; other letters are skipped
	// without numeric validation.
	src := `M205
G1 X10 Y0 Z0.2 E1 F1500
G1 X10 Y10 Z0.2 E2 Fbogus
`
	primary, _ := parseString(t, src, 0)
	if len(primary) != 1 {
		t.Fatalf("got %d layers, want 1", len(primary))
	}
}

func TestParseDeterministic(t *testing.T) {
	src := `M205
G1 X10 Y0 Z0.2 E1
G1 X10 Y10 Z0.2 E2
G0 X0 Y0
G1 X5 Y5 Z0.2 E3
G1 X5 Y15 Z0.4 E4
G1 X15 Y15 Z0.4 E5
`
	p1, s1 := parseString(t, src, 0)
	p2, s2 := parseString(t, src, 0)
	if !reflect.DeepEqual(p1, p2) || !reflect.DeepEqual(s1, s2) {
		t.Error("parsing the same stream twice gave different results")
	}
}

func TestParseEmptyInput(t *testing.T) {
	primary, secondary := parseString(t, "", 0)
	if len(primary) != 0 || len(secondary) != 0 {
		t.Errorf("got %d/%d layers, want empty tracks", len(primary), len(secondary))
	}
}

func TestTrackCounts(t *testing.T) {
	track := Track{
		Layer{Polyline{{0, 0, 0}, {1, 0, 0}}, Polyline{{0, 1, 0}, {1, 1, 0}, {2, 1, 0}}},
		Layer{Polyline{{0, 0, 0.2}, {1, 0, 0.2}}},
	}
	if got := track.Lines(); got != 3 {
		t.Errorf("Lines() = %d, want 3", got)
	}
	if got := track.Points(); got != 7 {
		t.Errorf("Points() = %d, want 7", got)
	}
}
