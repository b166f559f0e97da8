package metrics

// visibilityCounter accumulates keypoints visible on both sides against the
// keypoints visible on one chosen side.  Locations are ignored.
type visibilityCounter struct {
	name string
	// byPrediction selects the prediction side as denominator, otherwise the
	// ground truth
	byPrediction bool
	both         float64
	total        float64
}

func (c *visibilityCounter) update(in Inputs, sampleWeight []float64) error {

	w, err := in.validate(sampleWeight)

	if err != nil {
		return err
	}

	for i := 0; i < in.Len(); i++ {
		prVis := in.Prediction.Visibility[i]

		for k, gv := range in.GroundTruth.Visibility[i] {
			g, p := gv.IsVisible(), prVis[k].IsVisible()

			if g && p {
				c.both += w[i]
			}

			if (c.byPrediction && p) || (!c.byPrediction && g) {
				c.total += w[i]
			}
		}
	}

	return nil
}

func (c *visibilityCounter) result() map[string]float64 {
	return map[string]float64{c.name: ratio(c.both, c.total)}
}

func (c *visibilityCounter) reset() {
	c.both = 0
	c.total = 0
}

func (c *visibilityCounter) merge(o *visibilityCounter) bool {

	if o.name != c.name {
		return false
	}

	c.both += o.both
	c.total += o.total

	return true
}

// KeypointVisibilityPrecision is the weighted fraction of keypoints predicted
// visible that are also visible in the ground truth
type KeypointVisibilityPrecision struct {
	counter visibilityCounter
}

// NewKeypointVisibilityPrecision returns a visibility precision accumulator
func NewKeypointVisibilityPrecision(name string) *KeypointVisibilityPrecision {
	return &KeypointVisibilityPrecision{
		counter: visibilityCounter{name: name, byPrediction: true},
	}
}

// Update implements Metric
func (m *KeypointVisibilityPrecision) Update(in Inputs, sampleWeight []float64) error {
	return m.counter.update(in, sampleWeight)
}

// Result implements Metric
func (m *KeypointVisibilityPrecision) Result() map[string]float64 {
	return m.counter.result()
}

// Reset implements Metric
func (m *KeypointVisibilityPrecision) Reset() {
	m.counter.reset()
}

// Names implements Metric
func (m *KeypointVisibilityPrecision) Names() []string {
	return []string{m.counter.name}
}

// Merge implements Metric
func (m *KeypointVisibilityPrecision) Merge(other Metric) error {

	o, ok := other.(*KeypointVisibilityPrecision)

	if !ok || o == nil || !m.counter.merge(&o.counter) {
		return mergeMismatch(m, other)
	}

	return nil
}

// KeypointVisibilityRecall is the weighted fraction of keypoints visible in
// the ground truth that are also predicted visible
type KeypointVisibilityRecall struct {
	counter visibilityCounter
}

// NewKeypointVisibilityRecall returns a visibility recall accumulator
func NewKeypointVisibilityRecall(name string) *KeypointVisibilityRecall {
	return &KeypointVisibilityRecall{
		counter: visibilityCounter{name: name},
	}
}

// Update implements Metric
func (m *KeypointVisibilityRecall) Update(in Inputs, sampleWeight []float64) error {
	return m.counter.update(in, sampleWeight)
}

// Result implements Metric
func (m *KeypointVisibilityRecall) Result() map[string]float64 {
	return m.counter.result()
}

// Reset implements Metric
func (m *KeypointVisibilityRecall) Reset() {
	m.counter.reset()
}

// Names implements Metric
func (m *KeypointVisibilityRecall) Names() []string {
	return []string{m.counter.name}
}

// Merge implements Metric
func (m *KeypointVisibilityRecall) Merge(other Metric) error {

	o, ok := other.(*KeypointVisibilityRecall)

	if !ok || o == nil || !m.counter.merge(&o.counter) {
		return mergeMismatch(m, other)
	}

	return nil
}
