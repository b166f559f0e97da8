package posemetrics

import (
	"fmt"
	"math"
)

// BoundingBoxes holds one 2D or 3D box per object.  A nil *BoundingBoxes is
// used wherever no box is available.
type BoundingBoxes struct {
	// Center is laid out as [object][axis]
	Center [][]float64
	// Size is the full extent along each axis, laid out as [object][axis]
	Size [][]float64
	// Heading is the rotation around the z axis in radians.  A nil slice means
	// the boxes are axis aligned.
	Heading []float64
}

// Len returns the number of boxes
func (b *BoundingBoxes) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Center)
}

// Dims returns the number of axes of the boxes, or 0 for an empty batch
func (b *BoundingBoxes) Dims() int {
	if b == nil || len(b.Center) == 0 {
		return 0
	}
	return len(b.Center[0])
}

// Rotated returns true if the boxes have a heading
func (b *BoundingBoxes) Rotated() bool {
	return b != nil && b.Heading != nil
}

// HeadingAt returns the heading of box i, 0 for axis aligned boxes
func (b *BoundingBoxes) HeadingAt(i int) float64 {
	if !b.Rotated() {
		return 0
	}
	return b.Heading[i]
}

// Validate checks the boxes have matching shapes, finite values and no
// negative extents
func (b *BoundingBoxes) Validate() error {

	if b == nil {
		return nil
	}

	if len(b.Center) != len(b.Size) {
		return fmt.Errorf("%w: boxes have %d centers but %d sizes",
			ErrShape, len(b.Center), len(b.Size))
	}

	if b.Heading != nil && len(b.Heading) != len(b.Center) {
		return fmt.Errorf("%w: boxes have %d centers but %d headings",
			ErrShape, len(b.Center), len(b.Heading))
	}

	dims := b.Dims()

	if len(b.Center) > 0 && dims != 2 && dims != 3 {
		return fmt.Errorf("%w: boxes must have 2 or 3 axes, got %d", ErrShape, dims)
	}

	for i := range b.Center {
		if len(b.Center[i]) != dims || len(b.Size[i]) != dims {
			return fmt.Errorf("%w: box %d has %d center and %d size axes, expected %d",
				ErrShape, i, len(b.Center[i]), len(b.Size[i]), dims)
		}

		for a := 0; a < dims; a++ {
			if !finite(b.Center[i][a]) || !finite(b.Size[i][a]) {
				return fmt.Errorf("%w: box %d has non-finite values", ErrShape, i)
			}
			if b.Size[i][a] < 0 {
				return fmt.Errorf("%w: box %d has negative size %v", ErrShape, i, b.Size[i][a])
			}
		}

		if b.Heading != nil && !finite(b.Heading[i]) {
			return fmt.Errorf("%w: box %d has non-finite heading", ErrShape, i)
		}
	}

	return nil
}

// Gather returns the boxes at the given indices, in that order
func (b *BoundingBoxes) Gather(indices []int) *BoundingBoxes {

	if b == nil {
		return nil
	}

	out := &BoundingBoxes{
		Center: make([][]float64, 0, len(indices)),
		Size:   make([][]float64, 0, len(indices)),
	}

	if b.Heading != nil {
		out.Heading = make([]float64, 0, len(indices))
	}

	for _, i := range indices {
		out.Center = append(out.Center, append([]float64(nil), b.Center[i]...))
		out.Size = append(out.Size, append([]float64(nil), b.Size[i]...))

		if b.Heading != nil {
			out.Heading = append(out.Heading, b.Heading[i])
		}
	}

	return out
}

// ZeroBoxes returns n boxes of zero size at the origin
func ZeroBoxes(n, dims int, withHeading bool) *BoundingBoxes {

	out := &BoundingBoxes{
		Center: make([][]float64, n),
		Size:   make([][]float64, n),
	}

	for i := 0; i < n; i++ {
		out.Center[i] = make([]float64, dims)
		out.Size[i] = make([]float64, dims)
	}

	if withHeading {
		out.Heading = make([]float64, n)
	}

	return out
}

// ConcatBoxes joins batches of boxes.  The result has a heading if any of the
// inputs has one, axis aligned inputs contribute a zero heading.  Returns nil
// if none of the batches has boxes.
func ConcatBoxes(batches ...*BoundingBoxes) *BoundingBoxes {

	rotated := false
	present := false

	for _, b := range batches {
		if b != nil {
			present = true
		}
		if b.Rotated() {
			rotated = true
		}
	}

	if !present {
		return nil
	}

	out := &BoundingBoxes{}

	if rotated {
		out.Heading = []float64{}
	}

	for _, b := range batches {
		for i := 0; i < b.Len(); i++ {
			out.Center = append(out.Center, append([]float64(nil), b.Center[i]...))
			out.Size = append(out.Size, append([]float64(nil), b.Size[i]...))

			if rotated {
				out.Heading = append(out.Heading, b.HeadingAt(i))
			}
		}
	}

	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
