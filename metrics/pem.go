package metrics

import (
	"fmt"
	"math"

	"github.com/swdee/go-posemetrics"
)

// PoseEstimationMetric is the weighted mean keypoint error where a keypoint
// visible on only one side contributes MismatchPenalty instead of a distance.
// Keypoints invisible on both sides are ignored.
type PoseEstimationMetric struct {
	name            string
	mismatchPenalty float64
	sum             float64
	weight          float64
}

// NewPoseEstimationMetric returns a PEM accumulator
func NewPoseEstimationMetric(name string, mismatchPenalty float64) (*PoseEstimationMetric, error) {

	if math.IsNaN(mismatchPenalty) || math.IsInf(mismatchPenalty, 0) || mismatchPenalty < 0 {
		return nil, fmt.Errorf("%w: mismatch penalty must be a non negative number, got %v",
			posemetrics.ErrConfig, mismatchPenalty)
	}

	return &PoseEstimationMetric{
		name:            name,
		mismatchPenalty: mismatchPenalty,
	}, nil
}

// Update implements Metric
func (m *PoseEstimationMetric) Update(in Inputs, sampleWeight []float64) error {

	w, err := in.validate(sampleWeight)

	if err != nil {
		return err
	}

	for i := 0; i < in.Len(); i++ {
		gtVis := in.GroundTruth.Visibility[i]
		prVis := in.Prediction.Visibility[i]

		for k := range gtVis {
			g, p := gtVis[k].IsVisible(), prVis[k].IsVisible()

			switch {
			case g && p:
				m.sum += w[i] * distance(in.GroundTruth.Location[i][k], in.Prediction.Location[i][k])
			case g || p:
				m.sum += w[i] * m.mismatchPenalty
			default:
				continue
			}

			m.weight += w[i]
		}
	}

	return nil
}

// Result implements Metric
func (m *PoseEstimationMetric) Result() map[string]float64 {
	return map[string]float64{m.name: ratio(m.sum, m.weight)}
}

// Reset implements Metric
func (m *PoseEstimationMetric) Reset() {
	m.sum = 0
	m.weight = 0
}

// Names implements Metric
func (m *PoseEstimationMetric) Names() []string {
	return []string{m.name}
}

// Merge implements Metric
func (m *PoseEstimationMetric) Merge(other Metric) error {

	o, ok := other.(*PoseEstimationMetric)

	if !ok || o == nil || o.name != m.name || o.mismatchPenalty != m.mismatchPenalty {
		return mergeMismatch(m, other)
	}

	m.sum += o.sum
	m.weight += o.weight

	return nil
}
