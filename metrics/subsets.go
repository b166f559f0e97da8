package metrics

import (
	"fmt"

	"github.com/swdee/go-posemetrics"
)

// Subset is a named group of keypoint types
type Subset struct {
	Name  string
	Types []posemetrics.KeypointType
}

// CreateFunc builds the metric for one subset
type CreateFunc func(subset string, types []posemetrics.KeypointType) (Metric, error)

// MetricForSubsets runs an independent metric on each keypoint subset
type MetricForSubsets struct {
	srcOrder []posemetrics.KeypointType
	subsets  []Subset
	// indices into the keypoint axis of each subset
	indices [][]int
	metrics []Metric
}

// NewMetricForSubsets returns a metric that slices inputs laid out in
// srcOrder down to each subset and delegates to a metric created for it
func NewMetricForSubsets(srcOrder []posemetrics.KeypointType, subsets []Subset,
	create CreateFunc) (*MetricForSubsets, error) {

	if create == nil {
		return nil, fmt.Errorf("%w: subset metric requires a create function", posemetrics.ErrConfig)
	}

	position := make(map[posemetrics.KeypointType]int, len(srcOrder))

	for i, t := range srcOrder {
		if _, ok := position[t]; ok {
			return nil, fmt.Errorf("%w: keypoint type %v repeated in source order",
				posemetrics.ErrConfig, t)
		}
		position[t] = i
	}

	m := &MetricForSubsets{
		srcOrder: append([]posemetrics.KeypointType(nil), srcOrder...),
		subsets:  make([]Subset, len(subsets)),
		indices:  make([][]int, len(subsets)),
		metrics:  make([]Metric, len(subsets)),
	}

	for s, subset := range subsets {
		idx := make([]int, len(subset.Types))

		for n, t := range subset.Types {
			i, ok := position[t]

			if !ok {
				return nil, fmt.Errorf("%w: subset %s has keypoint type %v missing from source order",
					posemetrics.ErrConfig, subset.Name, t)
			}

			idx[n] = i
		}

		metric, err := create(subset.Name, subset.Types)

		if err != nil {
			return nil, fmt.Errorf("failed to create metric for subset %s: %w", subset.Name, err)
		}

		m.subsets[s] = Subset{
			Name:  subset.Name,
			Types: append([]posemetrics.KeypointType(nil), subset.Types...),
		}
		m.indices[s] = idx
		m.metrics[s] = metric
	}

	if err := uniqueNames(m.Names()); err != nil {
		return nil, err
	}

	return m, nil
}

// Subsets returns the subsets in evaluation order
func (m *MetricForSubsets) Subsets() []Subset {
	return append([]Subset(nil), m.subsets...)
}

// Update implements Metric.  Every subset metric is checked before any is
// updated.
func (m *MetricForSubsets) Update(in Inputs, sampleWeight []float64) error {

	if _, err := in.validate(sampleWeight); err != nil {
		return err
	}

	if err := m.check(in); err != nil {
		return err
	}

	for s, metric := range m.metrics {
		if err := metric.Update(in.Select(m.indices[s]), sampleWeight); err != nil {
			return fmt.Errorf("failed to update subset %s: %w", m.subsets[s].Name, err)
		}
	}

	return nil
}

// check verifies the keypoint layout and runs the preconditions of every
// subset metric
func (m *MetricForSubsets) check(in Inputs) error {

	if in.Len() > 0 && in.NumTypes() != len(m.srcOrder) {
		return fmt.Errorf("%w: inputs have %d keypoint types but source order has %d",
			posemetrics.ErrShape, in.NumTypes(), len(m.srcOrder))
	}

	for s, metric := range m.metrics {
		if err := checkMetric(metric, in.Select(m.indices[s])); err != nil {
			return fmt.Errorf("failed to update subset %s: %w", m.subsets[s].Name, err)
		}
	}

	return nil
}

// Result implements Metric
func (m *MetricForSubsets) Result() map[string]float64 {

	out := make(map[string]float64)

	for _, metric := range m.metrics {
		for name, v := range metric.Result() {
			out[name] = v
		}
	}

	return out
}

// Reset implements Metric
func (m *MetricForSubsets) Reset() {
	for _, metric := range m.metrics {
		metric.Reset()
	}
}

// Names implements Metric
func (m *MetricForSubsets) Names() []string {

	var names []string

	for _, metric := range m.metrics {
		names = append(names, metric.Names()...)
	}

	return names
}

// Merge implements Metric
func (m *MetricForSubsets) Merge(other Metric) error {

	o, ok := other.(*MetricForSubsets)

	if !ok || o == nil || len(o.metrics) != len(m.metrics) {
		return mergeMismatch(m, other)
	}

	for s := range m.subsets {
		if o.subsets[s].Name != m.subsets[s].Name {
			return mergeMismatch(m, other)
		}
	}

	for s, metric := range m.metrics {
		if err := metric.Merge(o.metrics[s]); err != nil {
			return fmt.Errorf("failed to merge subset %s: %w", m.subsets[s].Name, err)
		}
	}

	return nil
}
