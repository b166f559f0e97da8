package metrics

import (
	"fmt"

	"github.com/swdee/go-posemetrics/geometry"
)

// PCKParams configures PercentageOfCorrectKeypoints
type PCKParams struct {
	// Name is the prefix of every result name
	Name string
	// Thresholds to report, each produces a "<Name> @ <threshold>" result
	Thresholds []float64
	// PerTypeScales optionally scales the threshold of each keypoint type
	PerTypeScales []float64
	// UseObjectScale multiplies the threshold by the square root of the
	// ground truth box area
	UseObjectScale bool
}

// PercentageOfCorrectKeypoints is the weighted fraction of ground truth
// visible keypoints whose error does not exceed the effective threshold,
// threshold * object scale * per type scale.  Params must not be changed
// after construction.
type PercentageOfCorrectKeypoints struct {
	Params  PCKParams
	names   []string
	correct []float64
	weight  float64
}

// NewPercentageOfCorrectKeypoints returns a PCK accumulator
func NewPercentageOfCorrectKeypoints(p PCKParams) (*PercentageOfCorrectKeypoints, error) {

	if err := checkThresholds("PCK", p.Thresholds); err != nil {
		return nil, err
	}

	m := &PercentageOfCorrectKeypoints{
		Params:  p,
		names:   make([]string, len(p.Thresholds)),
		correct: make([]float64, len(p.Thresholds)),
	}

	for i, t := range p.Thresholds {
		m.names[i] = fmt.Sprintf("%s @ %.2f", p.Name, t)
	}

	if err := uniqueNames(m.names); err != nil {
		return nil, err
	}

	return m, nil
}

// check verifies the inputs carry boxes when the object scale is used and
// match the per type scales
func (m *PercentageOfCorrectKeypoints) check(in Inputs) error {

	if m.Params.UseObjectScale {
		if err := requireBox(in, "PCK with object scale"); err != nil {
			return err
		}
	}

	return checkScales(m.Params.PerTypeScales, in.NumTypes())
}

// Update implements Metric
func (m *PercentageOfCorrectKeypoints) Update(in Inputs, sampleWeight []float64) error {

	w, err := in.validate(sampleWeight)

	if err != nil {
		return err
	}

	if err := m.check(in); err != nil {
		return err
	}

	for i := 0; i < in.Len(); i++ {
		gt := in.GroundTruth.Location[i]
		pr := in.Prediction.Location[i]

		objScale := 1.0
		if m.Params.UseObjectScale {
			objScale = geometry.Scale(in.Box.Size[i])
		}

		for k, v := range in.GroundTruth.Visibility[i] {
			if !v.IsVisible() {
				continue
			}

			scale := objScale
			if m.Params.PerTypeScales != nil {
				scale *= m.Params.PerTypeScales[k]
			}

			d := distance(gt[k], pr[k])

			for ti, t := range m.Params.Thresholds {
				if d <= t*scale {
					m.correct[ti] += w[i]
				}
			}

			m.weight += w[i]
		}
	}

	return nil
}

// Result implements Metric
func (m *PercentageOfCorrectKeypoints) Result() map[string]float64 {

	out := make(map[string]float64, len(m.names))

	for i, name := range m.names {
		out[name] = ratio(m.correct[i], m.weight)
	}

	return out
}

// Reset implements Metric
func (m *PercentageOfCorrectKeypoints) Reset() {
	for i := range m.correct {
		m.correct[i] = 0
	}
	m.weight = 0
}

// Names implements Metric
func (m *PercentageOfCorrectKeypoints) Names() []string {
	return append([]string(nil), m.names...)
}

// Merge implements Metric
func (m *PercentageOfCorrectKeypoints) Merge(other Metric) error {

	o, ok := other.(*PercentageOfCorrectKeypoints)

	if !ok || o == nil || o.Params.Name != m.Params.Name ||
		o.Params.UseObjectScale != m.Params.UseObjectScale ||
		!sameFloats(o.Params.Thresholds, m.Params.Thresholds) ||
		!sameFloats(o.Params.PerTypeScales, m.Params.PerTypeScales) {
		return mergeMismatch(m, other)
	}

	for i := range m.correct {
		m.correct[i] += o.correct[i]
	}
	m.weight += o.weight

	return nil
}
