package geometry

import (
	"fmt"
	"math"

	"github.com/swdee/go-posemetrics"
	"gonum.org/v1/gonum/mat"
)

// Box is a single 2D or 3D box
type Box struct {
	// Center of the box
	Center []float64
	// Size is the full extent along each axis
	Size []float64
	// Heading is the rotation around the z axis in radians
	Heading float64
}

// BoxAt returns box i of the batch
func BoxAt(b *posemetrics.BoundingBoxes, i int) Box {
	return Box{
		Center:  b.Center[i],
		Size:    b.Size[i],
		Heading: b.HeadingAt(i),
	}
}

// Area returns the area of the box footprint, the product of the first two
// extents for both 2D and 3D boxes
func Area(size []float64) float64 {
	return size[0] * size[1]
}

// Volume returns the product of all extents
func Volume(size []float64) float64 {
	v := 1.0
	for _, s := range size {
		v *= s
	}
	return v
}

// Scale returns the object scale used to normalise keypoint errors, the
// square root of the box area
func Scale(size []float64) float64 {
	return math.Sqrt(Area(size))
}

// rotation returns the matrix rotating by heading around the z axis
func rotation(heading float64, dims int) *mat.Dense {

	r := mat.NewDense(dims, dims, nil)

	for i := 0; i < dims; i++ {
		r.Set(i, i, 1)
	}

	c, s := math.Cos(heading), math.Sin(heading)
	r.Set(0, 0, c)
	r.Set(0, 1, -s)
	r.Set(1, 0, s)
	r.Set(1, 1, c)

	return r
}

// Displacement returns the shift that moves point onto the boundary of box,
// or the zero vector when the point is inside.  For rotated boxes the shift is
// computed in the box frame and returned in the world frame.
func Displacement(point []float64, box Box) []float64 {

	dims := len(point)
	rel := make([]float64, dims)

	for a := 0; a < dims; a++ {
		rel[a] = point[a] - box.Center[a]
	}

	rot := rotation(box.Heading, dims)

	// world to box frame is the inverse rotation
	var local mat.VecDense
	local.MulVec(rot.T(), mat.NewVecDense(dims, rel))

	shift := make([]float64, dims)
	inside := true

	for a := 0; a < dims; a++ {
		half := box.Size[a] / 2
		v := local.AtVec(a)

		switch {
		case v < -half:
			shift[a] = -half - v
			inside = false
		case v > half:
			shift[a] = half - v
			inside = false
		}
	}

	if inside {
		return shift
	}

	var world mat.VecDense
	world.MulVec(rot, mat.NewVecDense(dims, shift))

	return world.RawVector().Data
}

// Contains reports whether point lies inside or on the boundary of box
func Contains(point []float64, box Box) bool {
	for _, v := range Displacement(point, box) {
		if v != 0 {
			return false
		}
	}
	return true
}

// BoxDisplacement computes Displacement for every point of every object
// against the box of the same object.  location is laid out as
// [object][point][axis].
func BoxDisplacement(location [][][]float64,
	boxes *posemetrics.BoundingBoxes) ([][][]float64, error) {

	if boxes == nil {
		return nil, fmt.Errorf("%w: box displacement requires boxes", posemetrics.ErrConfig)
	}

	if len(location) != boxes.Len() {
		return nil, fmt.Errorf("%w: %d objects but %d boxes",
			posemetrics.ErrShape, len(location), boxes.Len())
	}

	out := make([][][]float64, len(location))

	for i, pts := range location {
		box := BoxAt(boxes, i)
		out[i] = make([][]float64, len(pts))

		for j, pt := range pts {
			if len(pt) != len(box.Center) {
				return nil, fmt.Errorf("%w: object %d point %d has %d axes but box has %d",
					posemetrics.ErrShape, i, j, len(pt), len(box.Center))
			}
			out[i][j] = Displacement(pt, box)
		}
	}

	return out, nil
}
