// Package metrics provides streaming accumulators that score aligned ground
// truth and predicted keypoints.
package metrics

import (
	"fmt"
	"math"

	"github.com/swdee/go-posemetrics"
	"gonum.org/v1/gonum/floats"
)

// Metric is a stateful accumulator of a keypoint quality score.  Running
// totals persist across calls to Update until Reset is called.  A Metric is
// not safe for concurrent use, run one instance per goroutine and combine
// them with Merge.
type Metric interface {
	// Update adds a batch of aligned objects to the running totals.
	// sampleWeight holds one weight per object, nil weights every object by 1.
	Update(in Inputs, sampleWeight []float64) error
	// Result returns the current scores by name without changing state
	Result() map[string]float64
	// Reset zeroes all running totals
	Reset()
	// Names returns the result names in a stable order
	Names() []string
	// Merge adds the running totals of other, which must be a Metric of the
	// same kind and configuration
	Merge(other Metric) error
}

// checker is implemented by metrics with preconditions beyond the shared
// input validation.  Composites check every member before updating any.
type checker interface {
	check(in Inputs) error
}

// checkMetric runs the preconditions of m, if it has any
func checkMetric(m Metric, in Inputs) error {
	if c, ok := m.(checker); ok {
		return c.check(in)
	}
	return nil
}

// Inputs is a batch of aligned ground truth and predicted keypoints, object i
// of GroundTruth corresponds to object i of Prediction.  Box holds the ground
// truth boxes and may be nil for metrics that do not need it.
type Inputs struct {
	GroundTruth posemetrics.Keypoints
	Prediction  posemetrics.Keypoints
	Box         *posemetrics.BoundingBoxes
}

// Len returns the number of objects
func (in Inputs) Len() int {
	return in.GroundTruth.Len()
}

// NumTypes returns the number of keypoint types per object
func (in Inputs) NumTypes() int {
	return in.GroundTruth.NumTypes()
}

// Select returns the inputs restricted to the given keypoint indices
func (in Inputs) Select(indices []int) Inputs {
	return Inputs{
		GroundTruth: in.GroundTruth.Select(indices),
		Prediction:  in.Prediction.Select(indices),
		Box:         in.Box,
	}
}

// validate checks the inputs are consistent and returns the per object
// weights to use
func (in Inputs) validate(sampleWeight []float64) ([]float64, error) {

	if err := in.GroundTruth.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ground truth keypoints: %w", err)
	}

	if err := in.Prediction.Validate(); err != nil {
		return nil, fmt.Errorf("invalid predicted keypoints: %w", err)
	}

	n := in.Len()

	if in.Prediction.Len() != n {
		return nil, fmt.Errorf("%w: %d ground truth objects but %d predictions",
			posemetrics.ErrShape, n, in.Prediction.Len())
	}

	if n > 0 {
		if in.GroundTruth.NumTypes() != in.Prediction.NumTypes() {
			return nil, fmt.Errorf("%w: %d ground truth keypoint types but %d predicted",
				posemetrics.ErrShape, in.GroundTruth.NumTypes(), in.Prediction.NumTypes())
		}

		if in.GroundTruth.NumTypes() > 0 && in.GroundTruth.Dims() != in.Prediction.Dims() {
			return nil, fmt.Errorf("%w: ground truth keypoints have %d axes but predictions %d",
				posemetrics.ErrShape, in.GroundTruth.Dims(), in.Prediction.Dims())
		}
	}

	if in.Box != nil {
		if err := in.Box.Validate(); err != nil {
			return nil, fmt.Errorf("invalid boxes: %w", err)
		}

		if in.Box.Len() != n {
			return nil, fmt.Errorf("%w: %d objects but %d boxes",
				posemetrics.ErrShape, n, in.Box.Len())
		}
	}

	return objectWeights(sampleWeight, n)
}

// objectWeights returns sampleWeight, or all ones when it is nil
func objectWeights(sampleWeight []float64, n int) ([]float64, error) {

	if sampleWeight == nil {
		w := make([]float64, n)
		for i := range w {
			w[i] = 1
		}
		return w, nil
	}

	if len(sampleWeight) != n {
		return nil, fmt.Errorf("%w: %d sample weights for %d objects",
			posemetrics.ErrShape, len(sampleWeight), n)
	}

	for i, w := range sampleWeight {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return nil, fmt.Errorf("%w: sample weight %d is %v", posemetrics.ErrShape, i, w)
		}
	}

	return sampleWeight, nil
}

// checkScales verifies a per type scale table matches the keypoint count
func checkScales(scales []float64, numTypes int) error {

	if scales != nil && numTypes > 0 && len(scales) != numTypes {
		return fmt.Errorf("%w: %d per type scales for %d keypoint types",
			posemetrics.ErrConfig, len(scales), numTypes)
	}

	return nil
}

// checkThresholds verifies thresholds are present and finite
func checkThresholds(name string, thresholds []float64) error {

	if len(thresholds) == 0 {
		return fmt.Errorf("%w: %s requires at least one threshold", posemetrics.ErrConfig, name)
	}

	for _, t := range thresholds {
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			return fmt.Errorf("%w: %s has invalid threshold %v", posemetrics.ErrConfig, name, t)
		}
	}

	return nil
}

// uniqueNames returns an error if names holds a duplicate
func uniqueNames(names []string) error {

	seen := make(map[string]bool, len(names))

	for _, n := range names {
		if seen[n] {
			return fmt.Errorf("%w: duplicate metric name %q", posemetrics.ErrConfig, n)
		}
		seen[n] = true
	}

	return nil
}

// mergeMismatch returns the error for merging incompatible metrics
func mergeMismatch(m, other Metric) error {
	return fmt.Errorf("%w: cannot merge %T into %T with different configuration",
		posemetrics.ErrConfig, other, m)
}

// ratio returns num/den, or 0 when nothing was accumulated
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// distance returns the Euclidean distance between two points
func distance(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

func sameFloats(a, b []float64) bool {
	return floats.Equal(a, b)
}
