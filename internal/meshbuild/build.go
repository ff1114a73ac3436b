package meshbuild

import (
	"fmt"
	"runtime"
	"sync"

	"printwatch/internal/gcode"
	"printwatch/internal/mathutil"
	"printwatch/internal/ribbon"
)

// Color is an RGB triple in [0, 1].
type Color [3]float64

// Object is the combined print mesh: flat vertex buffer, triangles as
// index triples into it, and one color per vertex. Immutable once
// returned; hand it straight to the renderer.
type Object struct {
	Vertices []mathutil.Vec3
	Indices  [][3]int
	Colors   []Color
}

// Options controls ribbon geometry and coloring.
type Options struct {
	NozzleWidth float64 // extrusion ribbon width in mm
	LayerHeight float64 // extrusion ribbon height in mm
	Primary     Color   // color for all primary-extruder vertices
	Secondary   Color   // color for all secondary-extruder vertices
	Workers     int     // fragment workers; <= 1 builds serially, 0 means NumCPU
}

// FragmentError reports one polyline whose ribbon construction failed.
// The rest of the mesh is still assembled.
type FragmentError struct {
	Track string // "primary" or "secondary"
	Layer int
	Line  int
	Err   error
}

func (e FragmentError) Error() string {
	return fmt.Sprintf("meshbuild: %s track layer %d line %d: %v", e.Track, e.Layer, e.Line, e.Err)
}

// job identifies one polyline to turn into a ribbon fragment.
type job struct {
	line  gcode.Polyline
	color Color
	track string
	layer int
	index int
}

// fragment is one built ribbon plus its job metadata.
type fragment struct {
	mesh ribbon.Mesh
	job  job
	err  error
}

// Build concatenates ribbon meshes for every polyline in the first
// layerCount layers of both tracks. Either track may be empty.
// Polylines of fewer than 2 points define no ribbon and are skipped.
// Triangle indices are rebased by the running vertex count so the
// combined index buffer is valid against the combined vertex buffer.
//
// Fragments are built on a worker pool when opts.Workers allows it;
// results are concatenated in deterministic print order regardless of
// worker scheduling. A failing fragment is reported and skipped, never
// discarding the rest of the mesh.
func Build(primary, secondary gcode.Track, layerCount int, opts Options) (*Object, []FragmentError) {
	jobs := collect(primary, "primary", opts.Primary, layerCount)
	jobs = append(jobs, collect(secondary, "secondary", opts.Secondary, layerCount)...)

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	halfWidth := opts.NozzleWidth / 2

	frags := make([]fragment, len(jobs))
	if workers <= 1 {
		for i, j := range jobs {
			frags[i] = buildFragment(j, halfWidth, opts.LayerHeight)
		}
	} else {
		jobChan := make(chan int, workers*2)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobChan {
					frags[i] = buildFragment(jobs[i], halfWidth, opts.LayerHeight)
				}
			}()
		}
		for i := range jobs {
			jobChan <- i
		}
		close(jobChan)
		wg.Wait()
	}

	return assemble(frags)
}

// collect flattens the first layerCount layers of a track into jobs.
func collect(track gcode.Track, name string, color Color, layerCount int) []job {
	if layerCount > len(track) {
		layerCount = len(track)
	}
	var jobs []job
	for li, layer := range track[:layerCount] {
		for i, line := range layer {
			if len(line) < 2 {
				continue
			}
			jobs = append(jobs, job{
				line:  line,
				color: color,
				track: name,
				layer: li,
				index: i,
			})
		}
	}
	return jobs
}

// buildFragment builds one ribbon, converting a geometry-contract
// panic into a per-fragment error instead of taking down the run.
func buildFragment(j job, halfWidth, height float64) (frag fragment) {
	frag.job = j
	defer func() {
		if r := recover(); r != nil {
			frag.mesh = ribbon.Mesh{}
			frag.err = fmt.Errorf("ribbon construction panicked: %v", r)
		}
	}()
	frag.mesh = ribbon.Build(j.line, halfWidth, height)
	return frag
}

// assemble concatenates fragments in job order, rebasing indices by a
// running prefix sum of vertex counts.
func assemble(frags []fragment) (*Object, []FragmentError) {
	var nVerts, nTris int
	for _, f := range frags {
		if f.err != nil {
			continue
		}
		nVerts += len(f.mesh.Vertices)
		nTris += len(f.mesh.Indices)
	}

	obj := &Object{
		Vertices: make([]mathutil.Vec3, 0, nVerts),
		Indices:  make([][3]int, 0, nTris),
		Colors:   make([]Color, 0, nVerts),
	}
	var errs []FragmentError

	for _, f := range frags {
		if f.err != nil {
			errs = append(errs, FragmentError{
				Track: f.job.track,
				Layer: f.job.layer,
				Line:  f.job.index,
				Err:   f.err,
			})
			continue
		}
		base := len(obj.Vertices)
		obj.Vertices = append(obj.Vertices, f.mesh.Vertices...)
		for _, t := range f.mesh.Indices {
			obj.Indices = append(obj.Indices, [3]int{t[0] + base, t[1] + base, t[2] + base})
		}
		for range f.mesh.Vertices {
			obj.Colors = append(obj.Colors, f.job.color)
		}
	}

	return obj, errs
}
