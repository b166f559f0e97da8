package geometry

import (
	"fmt"
	"math"

	clipper "github.com/ctessum/go.clipper"
	"github.com/swdee/go-posemetrics"
)

const (
	// maxClipperScale is the largest fixed point scale used when converting
	// box corners into clipper integer coordinates
	maxClipperScale = 1e6
	// clipperRange keeps scaled coordinates inside clipper's fast 64bit range
	clipperRange = 5e8
)

// Overlap returns the Intersection over Union (IoU) of two boxes with the same
// number of axes.  2D boxes are compared by area, 3D boxes by volume where the
// heading rotates the footprint around the z axis.
func Overlap(a, b Box) float64 {

	if len(a.Center) != len(b.Center) {
		return 0
	}

	volA := Volume(a.Size)
	volB := Volume(b.Size)

	var inter float64

	if a.Heading == 0 && b.Heading == 0 {
		inter = alignedIntersection(a, b)
	} else {
		inter = footprintIntersection(a, b)

		// z extent is not affected by heading
		for axis := 2; axis < len(a.Center); axis++ {
			inter *= axisOverlap(a, b, axis)
		}
	}

	union := volA + volB - inter

	if inter <= 0 || union <= 0 {
		return 0
	}

	return math.Min(inter/union, 1)
}

// OverlapMatrix returns the IoU between every box in a (rows) and every box
// in b (columns)
func OverlapMatrix(a, b *posemetrics.BoundingBoxes) ([][]float64, error) {

	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: overlap requires boxes", posemetrics.ErrConfig)
	}

	if a.Len() > 0 && b.Len() > 0 && a.Dims() != b.Dims() {
		return nil, fmt.Errorf("%w: cannot compare %dD and %dD boxes",
			posemetrics.ErrShape, a.Dims(), b.Dims())
	}

	ious := make([][]float64, a.Len())

	for i := range ious {
		ious[i] = make([]float64, b.Len())
		boxA := BoxAt(a, i)

		for j := range ious[i] {
			ious[i][j] = Overlap(boxA, BoxAt(b, j))
		}
	}

	return ious, nil
}

// axisOverlap returns the length of the overlap of two boxes along one axis
func axisOverlap(a, b Box, axis int) float64 {
	lo := math.Max(a.Center[axis]-a.Size[axis]/2, b.Center[axis]-b.Size[axis]/2)
	hi := math.Min(a.Center[axis]+a.Size[axis]/2, b.Center[axis]+b.Size[axis]/2)
	return math.Max(0, hi-lo)
}

// alignedIntersection returns the intersection volume of two axis aligned
// boxes
func alignedIntersection(a, b Box) float64 {
	inter := 1.0
	for axis := range a.Center {
		inter *= axisOverlap(a, b, axis)
	}
	return inter
}

// corners returns the four footprint corners of a box in counter clockwise
// order
func corners(box Box) [4][2]float64 {

	cx, cy := box.Center[0], box.Center[1]
	xD, yD := box.Size[0], box.Size[1]

	aCos := math.Cos(box.Heading)
	aSin := math.Sin(box.Heading)

	cornersX := [4]float64{-xD / 2, xD / 2, xD / 2, -xD / 2}
	cornersY := [4]float64{-yD / 2, -yD / 2, yD / 2, yD / 2}

	var out [4][2]float64

	for i := 0; i < 4; i++ {
		out[i][0] = aCos*cornersX[i] - aSin*cornersY[i] + cx
		out[i][1] = aSin*cornersX[i] + aCos*cornersY[i] + cy
	}

	return out
}

// footprintIntersection returns the intersection area of the rotated
// footprints of two boxes using polygon clipping
func footprintIntersection(a, b Box) float64 {

	ca := corners(a)
	cb := corners(b)

	// work relative to the midpoint between the boxes so the fixed point
	// conversion keeps as much precision as possible
	ox := (a.Center[0] + b.Center[0]) / 2
	oy := (a.Center[1] + b.Center[1]) / 2

	maxAbs := 0.0
	for i := 0; i < 4; i++ {
		maxAbs = math.Max(maxAbs, math.Abs(ca[i][0]-ox))
		maxAbs = math.Max(maxAbs, math.Abs(ca[i][1]-oy))
		maxAbs = math.Max(maxAbs, math.Abs(cb[i][0]-ox))
		maxAbs = math.Max(maxAbs, math.Abs(cb[i][1]-oy))
	}

	if maxAbs == 0 {
		return 0
	}

	scale := math.Min(maxClipperScale, clipperRange/maxAbs)

	toPath := func(c [4][2]float64) clipper.Path {
		var path clipper.Path
		for _, pt := range c {
			path = append(path, &clipper.IntPoint{
				X: clipper.CInt(math.Round((pt[0] - ox) * scale)),
				Y: clipper.CInt(math.Round((pt[1] - oy) * scale)),
			})
		}
		return path
	}

	c := clipper.NewClipper(clipper.IoNone)
	c.AddPath(toPath(ca), clipper.PtSubject, true)
	c.AddPath(toPath(cb), clipper.PtClip, true)

	solution, ok := c.Execute1(clipper.CtIntersection, clipper.PftNonZero, clipper.PftNonZero)

	if !ok {
		return 0
	}

	area := 0.0
	for _, path := range solution {
		area += pathArea(path)
	}

	return math.Abs(area) / (scale * scale)
}

// pathArea returns the signed area of a closed integer polygon
func pathArea(path clipper.Path) float64 {

	area := 0.0
	n := len(path)

	for i := 0; i < n; i++ {
		p := path[i]
		q := path[(i+1)%n]
		area += float64(p.X)*float64(q.Y) - float64(q.X)*float64(p.Y)
	}

	return area / 2
}
