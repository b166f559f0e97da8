package metrics

import (
	"fmt"
	"math"

	"github.com/swdee/go-posemetrics"
	"github.com/swdee/go-posemetrics/geometry"
)

// oksEpsilon is added to the object area as in the COCO reference
// implementation
const oksEpsilon = 2.220446049250313e-16

// ObjectKeypointSimilarity returns the OKS of every object.  Per keypoint
// similarity is exp(-d^2 / (2 * area * k^2)) where area is the ground truth
// box area and k the per type scale.  An object's OKS is the mean over
// keypoint types visible in the ground truth, or 0 if none is visible.
func ObjectKeypointSimilarity(gt, pr posemetrics.Keypoints,
	box *posemetrics.BoundingBoxes, perTypeScales []float64) ([]float64, error) {

	in := Inputs{GroundTruth: gt, Prediction: pr, Box: box}

	if _, err := in.validate(nil); err != nil {
		return nil, err
	}

	if err := requireBox(in, "object keypoint similarity"); err != nil {
		return nil, err
	}

	if err := requireScales(perTypeScales, in.NumTypes()); err != nil {
		return nil, err
	}

	return objectSimilarities(in, perTypeScales), nil
}

// ObjectKeypointSimilarityOne returns the OKS of a single object given its
// keypoints laid out as [keypoint][axis] and the size of its ground truth box
func ObjectKeypointSimilarityOne(gtLocation [][]float64,
	gtVisibility []posemetrics.Visibility, prLocation [][]float64,
	boxSize []float64, perTypeScales []float64) (float64, error) {

	if len(boxSize) < 2 {
		return 0, fmt.Errorf("%w: box size needs at least 2 axes, got %d",
			posemetrics.ErrShape, len(boxSize))
	}

	center := make([]float64, len(boxSize))
	res, err := ObjectKeypointSimilarity(
		posemetrics.Keypoints{
			Location:   [][][]float64{gtLocation},
			Visibility: [][]posemetrics.Visibility{gtVisibility},
		},
		posemetrics.Keypoints{
			Location:   [][][]float64{prLocation},
			Visibility: [][]posemetrics.Visibility{make([]posemetrics.Visibility, len(prLocation))},
		},
		&posemetrics.BoundingBoxes{
			Center: [][]float64{center},
			Size:   [][]float64{boxSize},
		},
		perTypeScales,
	)

	if err != nil {
		return 0, err
	}

	return res[0], nil
}

// objectSimilarities computes OKS for already validated inputs
func objectSimilarities(in Inputs, perTypeScales []float64) []float64 {

	out := make([]float64, in.Len())

	for i := range out {
		area := geometry.Area(in.Box.Size[i])
		out[i] = similarity(in.GroundTruth.Location[i], in.GroundTruth.Visibility[i],
			in.Prediction.Location[i], area, perTypeScales)
	}

	return out
}

// similarity returns the OKS of one object
func similarity(gt [][]float64, vis []posemetrics.Visibility, pr [][]float64,
	area float64, scales []float64) float64 {

	sum := 0.0
	visible := 0

	for k := range gt {
		if !vis[k].IsVisible() {
			continue
		}

		d := distance(gt[k], pr[k])
		sum += math.Exp(-d * d / (2 * (area + oksEpsilon) * scales[k] * scales[k]))
		visible++
	}

	if visible == 0 {
		return 0
	}

	return sum / float64(visible)
}

// hasVisible reports whether any keypoint of the object is visible
func hasVisible(vis []posemetrics.Visibility) bool {
	for _, v := range vis {
		if v.IsVisible() {
			return true
		}
	}
	return false
}

func requireBox(in Inputs, what string) error {
	if in.Box == nil {
		return fmt.Errorf("%w: %s requires ground truth boxes", posemetrics.ErrConfig, what)
	}
	return nil
}

// requireScales is checkScales for metrics where the scales are mandatory
func requireScales(scales []float64, numTypes int) error {

	if scales == nil && numTypes > 0 {
		return fmt.Errorf("%w: per type scales are required", posemetrics.ErrConfig)
	}

	for _, s := range scales {
		if !(s > 0) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: per type scales must be positive, got %v",
				posemetrics.ErrConfig, s)
		}
	}

	return checkScales(scales, numTypes)
}
