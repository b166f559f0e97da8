package metrics

import (
	"fmt"
)

// CombinedMetric broadcasts every update to an ordered list of metrics and
// merges their results
type CombinedMetric struct {
	metrics []Metric
}

// NewCombinedMetric returns a CombinedMetric, result names must be unique
// across all metrics
func NewCombinedMetric(metrics ...Metric) (*CombinedMetric, error) {

	c := &CombinedMetric{
		metrics: append([]Metric(nil), metrics...),
	}

	if err := uniqueNames(c.Names()); err != nil {
		return nil, err
	}

	return c, nil
}

// Metrics returns the combined metrics in order
func (c *CombinedMetric) Metrics() []Metric {
	return append([]Metric(nil), c.metrics...)
}

// Update implements Metric.  Inputs are validated and checked against every
// member before any member is updated, a rejected batch leaves all totals
// unchanged.
func (c *CombinedMetric) Update(in Inputs, sampleWeight []float64) error {

	if _, err := in.validate(sampleWeight); err != nil {
		return err
	}

	if err := c.check(in); err != nil {
		return err
	}

	for i, m := range c.metrics {
		if err := m.Update(in, sampleWeight); err != nil {
			return fmt.Errorf("failed to update metric %d %T: %w", i, m, err)
		}
	}

	return nil
}

// check runs the preconditions of every member
func (c *CombinedMetric) check(in Inputs) error {

	for i, m := range c.metrics {
		if err := checkMetric(m, in); err != nil {
			return fmt.Errorf("failed to update metric %d %T: %w", i, m, err)
		}
	}

	return nil
}

// Result implements Metric
func (c *CombinedMetric) Result() map[string]float64 {

	out := make(map[string]float64)

	for _, m := range c.metrics {
		for name, v := range m.Result() {
			out[name] = v
		}
	}

	return out
}

// Reset implements Metric
func (c *CombinedMetric) Reset() {
	for _, m := range c.metrics {
		m.Reset()
	}
}

// Names implements Metric
func (c *CombinedMetric) Names() []string {

	var names []string

	for _, m := range c.metrics {
		names = append(names, m.Names()...)
	}

	return names
}

// Merge implements Metric
func (c *CombinedMetric) Merge(other Metric) error {

	o, ok := other.(*CombinedMetric)

	if !ok || o == nil || len(o.metrics) != len(c.metrics) {
		return mergeMismatch(c, other)
	}

	for i, m := range c.metrics {
		if err := m.Merge(o.metrics[i]); err != nil {
			return fmt.Errorf("failed to merge metric %d: %w", i, err)
		}
	}

	return nil
}
