package gcode

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// printerState holds the mutable motion registers for one extruder:
// current position, the z of the last recorded extrusion, the last E
// register value, and the signed extrusion balance used to track
// retraction recovery. One slot exists per extruder; a tool change
// switches slots wholesale so a paused extruder resumes exactly where
// it left off.
type printerState struct {
	X, Y, Z       float64
	LastExtrudedZ float64
	LastE         float64
	EBalance      float64
}

// trackBuilder accumulates one extruder's layers during a parse.
type trackBuilder struct {
	layers Track
	lines  Layer
	open   Polyline
}

// closeLine commits the open polyline if it describes at least one
// segment. Single-point leftovers (travel seeds) are dropped.
func (tb *trackBuilder) closeLine() {
	if len(tb.open) > 1 {
		tb.lines = append(tb.lines, tb.open)
	}
	tb.open = nil
}

// closeLayer seals the current layer and starts a fresh one. The open
// polyline is abandoned: a layer change mid-line means the slicer
// started the next layer, not that the line continues.
func (tb *trackBuilder) closeLayer() {
	tb.layers = append(tb.layers, tb.lines)
	tb.lines = nil
	tb.open = nil
}

// finish commits the in-progress line and layer, then drops the first
// layer. The transition from setup moves to the first real extrusion
// always seals one garbage layer, so the head of the list is never
// real geometry.
func (tb *trackBuilder) finish() Track {
	tb.closeLine()
	if len(tb.lines) > 0 {
		tb.layers = append(tb.layers, tb.lines)
		tb.lines = nil
	}
	if len(tb.layers) == 0 {
		return nil
	}
	return tb.layers[1:]
}

type parser struct {
	hotendOffset float64
	tool         int
	states       [2]printerState
	tracks       [2]trackBuilder
	printing     bool
}

// Parse consumes a G-code stream and reconstructs where each extruder
// put down material: one Track per extruder, each an ordered list of
// layers of extrusion polylines. Single-extruder prints leave the
// secondary track empty, which is a valid result.
//
// hotendOffset is the X distance between the two nozzles of a
// dual-extruder machine. Slicers shift X so the second nozzle lands on
// the intended spot; the offset is added back here so recorded
// coordinates are true nozzle positions. Pass 0 for single-extruder
// input (the Ultimaker 3 uses 18).
//
// Malformed numeric operands abort the parse: a toolpath that cannot
// be read in full cannot be partially trusted. Unrecognized commands
// are skipped for forward compatibility with slicer dialects.
func Parse(r io.Reader, hotendOffset float64) (primary, secondary Track, err error) {
	p := &parser{hotendOffset: hotendOffset}

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()

		// Shave off the comment, if any
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch cmd := fields[0]; cmd {
		case "T0", "T1":
			// Switching the slot index swaps the whole register set
			// and track at once; the inactive extruder's state stays
			// frozen until it is selected again.
			p.tool = int(cmd[1] - '0')
		case "M205":
			// The slicer emits this once real motion begins. Everything
			// before it is priming and homing, which must not be recorded.
			p.printing = true
		case "G0", "G1":
			// Both parsed identically: extrusion is detected from the
			// operands, not the command code.
			if !p.printing {
				continue
			}
			if err := p.motion(fields, lineNo); err != nil {
				return nil, nil, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("gcode: read line %d: %w", lineNo+1, err)
	}

	return p.tracks[0].finish(), p.tracks[1].finish(), nil
}

// ParseFile reads and parses a G-code file.
func ParseFile(path string, hotendOffset float64) (primary, secondary Track, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("gcode: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, hotendOffset)
}

// motion handles one G0/G1 command against the active extruder's state.
func (p *parser) motion(fields []string, lineNo int) error {
	st := &p.states[p.tool]

	// Unspecified axes keep their current value
	newX, newY, newZ, newE := st.X, st.Y, st.Z, st.LastE
	var sawMove, sawE bool

	for _, op := range fields[1:] {
		axis := op[0]
		switch axis {
		case 'X', 'Y', 'Z', 'E':
		default:
			// Feedrate and friends carry no geometry
			continue
		}
		v, err := strconv.ParseFloat(op[1:], 64)
		if err != nil {
			return fmt.Errorf("gcode: line %d: bad %c operand %q", lineNo, axis, op)
		}
		switch axis {
		case 'X':
			if p.tool == 1 {
				v += p.hotendOffset
			}
			newX = v
			sawMove = true
		case 'Y':
			newY = v
			sawMove = true
		case 'Z':
			newZ = v
			sawMove = true
		case 'E':
			newE = v
			sawE = true
		}
	}

	if sawE {
		// Once the balance goes negative (retraction), subsequent
		// positive E deltas must first refill it before any material
		// actually leaves the nozzle. A positive balance resets to the
		// fresh delta each move.
		deltaE := newE - st.LastE
		if st.EBalance <= 0 {
			st.EBalance += deltaE
		} else {
			st.EBalance = deltaE
		}
	}

	extruding := false
	if sawE && sawMove {
		if st.EBalance > 0 {
			extruding = true
			tb := &p.tracks[p.tool]
			if newZ != st.LastExtrudedZ {
				tb.closeLayer()
			}
			tb.open = append(tb.open, Point3{newX, newY, newZ})
			st.LastExtrudedZ = newZ
		}
	}

	if !extruding {
		// Travel move: commit the line in progress and seed the next
		// one with this position, so the next extrusion has a
		// predecessor point to form its first segment.
		tb := &p.tracks[p.tool]
		tb.closeLine()
		tb.open = append(tb.open, Point3{newX, newY, newZ})
	}

	st.X, st.Y, st.Z = newX, newY, newZ
	st.LastE = newE
	return nil
}
