package metrics

// MeanPerJointPositionError is the weighted mean Euclidean distance between
// ground truth and predicted keypoints that are visible in the ground truth
type MeanPerJointPositionError struct {
	name   string
	sum    float64
	weight float64
}

// NewMeanPerJointPositionError returns an MPJPE accumulator reporting under
// name
func NewMeanPerJointPositionError(name string) *MeanPerJointPositionError {
	return &MeanPerJointPositionError{name: name}
}

// Update implements Metric
func (m *MeanPerJointPositionError) Update(in Inputs, sampleWeight []float64) error {

	w, err := in.validate(sampleWeight)

	if err != nil {
		return err
	}

	for i := 0; i < in.Len(); i++ {
		gt := in.GroundTruth.Location[i]
		pr := in.Prediction.Location[i]

		for k, v := range in.GroundTruth.Visibility[i] {
			if !v.IsVisible() {
				continue
			}

			m.sum += w[i] * distance(gt[k], pr[k])
			m.weight += w[i]
		}
	}

	return nil
}

// Result implements Metric
func (m *MeanPerJointPositionError) Result() map[string]float64 {
	return map[string]float64{m.name: ratio(m.sum, m.weight)}
}

// Reset implements Metric
func (m *MeanPerJointPositionError) Reset() {
	m.sum = 0
	m.weight = 0
}

// Names implements Metric
func (m *MeanPerJointPositionError) Names() []string {
	return []string{m.name}
}

// Merge implements Metric
func (m *MeanPerJointPositionError) Merge(other Metric) error {

	o, ok := other.(*MeanPerJointPositionError)

	if !ok || o == nil || o.name != m.name {
		return mergeMismatch(m, other)
	}

	m.sum += o.sum
	m.weight += o.weight

	return nil
}
