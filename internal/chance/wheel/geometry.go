package wheel

import (
	"errors"
	"math"

	"github.com/cory-johannsen/chance/internal/chance/sample"
)

// ErrTooFewOptions is returned when a spin is requested with fewer than two options.
var ErrTooFewOptions = errors.New("wheel: at least 2 options are required to spin")

// Commit constants.
const (
	// SafeOffsetMin and SafeOffsetSpan confine the landing point to the
	// central 64% of the target slice, away from its boundaries.
	SafeOffsetMin  = 0.18
	SafeOffsetSpan = 0.64
	// MinSpins and MaxSpins bound the whole turns added for visual effect.
	MinSpins = 6
	MaxSpins = 8
	// LayoutStartDeg is where slice 0 begins; the pointer sits at 0 (top).
	LayoutStartDeg = -90.0
)

// Target is the algebraic commitment for one spin.
type Target struct {
	Index int
	// Offset is the landing fraction within the slice, in [0.18, 0.82).
	Offset float64
	// Angle is the slice-space angle brought under the pointer.
	Angle float64
	Spins int
	// Rotation is the absolute wheel rotation after the spin, in degrees.
	Rotation float64
}

// SliceDegrees returns the angular width of one of n slices.
func SliceDegrees(n int) float64 {
	if n <= 0 {
		return 360
	}
	return 360 / float64(n)
}

// Norm360 maps deg into [0, 360).
func Norm360(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	if r >= 360 {
		r = 0
	}
	return r
}

// Commit chooses a random slice, landing offset and spin count for a wheel of
// n options currently rotated by current degrees.
//
// Precondition: n >= 2, otherwise ErrTooFewOptions.
// Postcondition: Resolve(Render(layout, n, t.Rotation)) == t.Index.
func Commit(src sample.Source, n int, current float64) (Target, error) {
	if n < 2 {
		return Target{}, ErrTooFewOptions
	}
	index, err := sample.UniformIndex(src, n)
	if err != nil {
		return Target{}, err
	}
	offset := SafeOffsetMin + src.Float64()*SafeOffsetSpan
	spins := MinSpins + int(src.Int64N(MaxSpins-MinSpins+1))
	return CommitAt(n, index, offset, spins, current), nil
}

// CommitAt is the deterministic core of Commit.
//
// The final rotation is current + spins*360 + (360 - angle), with the residue
// of current folded into the last partial turn so the landing point is
// correct whatever rotation the wheel was left at by earlier spins.
func CommitAt(n, index int, offset float64, spins int, current float64) Target {
	slice := SliceDegrees(n)
	angle := LayoutStartDeg + float64(index)*slice + slice*offset
	return Target{
		Index:    index,
		Offset:   offset,
		Angle:    angle,
		Spins:    spins,
		Rotation: current + float64(spins)*360 + Norm360(360-angle-current),
	}
}

// Point is a screen coordinate; Y grows downward.
type Point struct {
	X, Y float64
}

// Layout positions the pointer and the per-slice reference markers.
type Layout struct {
	Center Point
	// MarkerRadius is the distance of each slice's hidden marker from Center.
	MarkerRadius float64
	// PointerRadius is the distance of the fixed pointer above Center.
	PointerRadius float64
	// Snap rounds rendered coordinates to this grid when positive, modelling
	// layout rounding in the renderer.
	Snap float64
}

// DefaultLayout matches a 320px wheel with markers at the label ring.
var DefaultLayout = Layout{
	Center:        Point{X: 160, Y: 160},
	MarkerRadius:  118,
	PointerRadius: 160,
}

// Scene is the rendered geometry after a rotation settles.
type Scene struct {
	Pointer Point
	Markers []Point
}

// Render computes the pointer center and each slice marker's center for a
// wheel of n slices rotated clockwise by rotation degrees.
func Render(l Layout, n int, rotation float64) Scene {
	scene := Scene{
		Pointer: l.snap(Point{X: l.Center.X, Y: l.Center.Y - l.PointerRadius}),
	}
	if n <= 0 {
		return scene
	}
	slice := SliceDegrees(n)
	rot := Norm360(rotation)
	scene.Markers = make([]Point, n)
	for i := range n {
		// Slice-space angles count clockwise from the top; screen angles
		// count clockwise from +X, hence the extra -90.
		center := LayoutStartDeg + (float64(i)+0.5)*slice
		theta := (center - 90 + rot) * math.Pi / 180
		scene.Markers[i] = l.snap(Point{
			X: l.Center.X + l.MarkerRadius*math.Cos(theta),
			Y: l.Center.Y + l.MarkerRadius*math.Sin(theta),
		})
	}
	return scene
}

func (l Layout) snap(p Point) Point {
	if l.Snap <= 0 {
		return p
	}
	return Point{X: math.Round(p.X/l.Snap) * l.Snap, Y: math.Round(p.Y/l.Snap) * l.Snap}
}

// Resolve returns the index of the marker nearest the pointer by squared
// Euclidean distance. It reports false when the scene has no markers.
func Resolve(scene Scene) (int, bool) {
	best := -1
	bestD := math.Inf(1)
	for i, m := range scene.Markers {
		dx := m.X - scene.Pointer.X
		dy := m.Y - scene.Pointer.Y
		if d := dx*dx + dy*dy; d < bestD {
			best, bestD = i, d
		}
	}
	return best, best >= 0
}
