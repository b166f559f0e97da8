package metrics

import (
	"fmt"
	"strings"

	"github.com/swdee/go-posemetrics"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultPrecisionFormat formats the per threshold precision name from
	// the metric name and the threshold
	DefaultPrecisionFormat = "%[1]s P @ %.2[2]f"
	// DefaultAveragePrecisionFormat formats the average precision name from
	// the metric name
	DefaultAveragePrecisionFormat = "%[1]s AP"
)

// APParams configures AveragePrecisionAtOKS
type APParams struct {
	// Name is passed to both formats as the first argument
	Name string
	// Thresholds are the OKS values an object must reach to count as correct
	Thresholds []float64
	// PerTypeScales is the OKS scale of each keypoint type
	PerTypeScales []float64
	// PrecisionFormat is a fmt format taking the name and a threshold,
	// DefaultPrecisionFormat when empty
	PrecisionFormat string
	// AveragePrecisionFormat is a fmt format taking the name,
	// DefaultAveragePrecisionFormat when empty
	AveragePrecisionFormat string
}

// AveragePrecisionAtOKS reports for every threshold the weighted fraction of
// objects whose OKS reaches it, and the unweighted mean of those precisions.
// Objects without any visible ground truth keypoint are not counted.
type AveragePrecisionAtOKS struct {
	Params         APParams
	precisionNames []string
	apName         string
	truePositives  []float64
	weight         float64
}

// NewAveragePrecisionAtOKS returns an AP accumulator
func NewAveragePrecisionAtOKS(p APParams) (*AveragePrecisionAtOKS, error) {

	if err := checkThresholds("AP", p.Thresholds); err != nil {
		return nil, err
	}

	if len(p.PerTypeScales) == 0 {
		return nil, fmt.Errorf("%w: AP requires per type scales", posemetrics.ErrConfig)
	}

	if err := requireScales(p.PerTypeScales, len(p.PerTypeScales)); err != nil {
		return nil, err
	}

	if p.PrecisionFormat == "" {
		p.PrecisionFormat = DefaultPrecisionFormat
	}

	if p.AveragePrecisionFormat == "" {
		p.AveragePrecisionFormat = DefaultAveragePrecisionFormat
	}

	m := &AveragePrecisionAtOKS{
		Params:         p,
		precisionNames: make([]string, len(p.Thresholds)),
		truePositives:  make([]float64, len(p.Thresholds)),
	}

	for i, t := range p.Thresholds {
		m.precisionNames[i] = fmt.Sprintf(p.PrecisionFormat, p.Name, t)
	}

	m.apName = fmt.Sprintf(p.AveragePrecisionFormat, p.Name)

	for _, n := range m.Names() {
		if strings.Contains(n, "%!") {
			return nil, fmt.Errorf("%w: invalid result format produced %q", posemetrics.ErrConfig, n)
		}
	}

	if err := uniqueNames(m.Names()); err != nil {
		return nil, err
	}

	return m, nil
}

// Update implements Metric
func (m *AveragePrecisionAtOKS) Update(in Inputs, sampleWeight []float64) error {

	w, err := in.validate(sampleWeight)

	if err != nil {
		return err
	}

	if err := m.check(in); err != nil {
		return err
	}

	oks := objectSimilarities(in, m.Params.PerTypeScales)

	for i, score := range oks {
		if !hasVisible(in.GroundTruth.Visibility[i]) {
			continue
		}

		for ti, t := range m.Params.Thresholds {
			if score >= t {
				m.truePositives[ti] += w[i]
			}
		}

		m.weight += w[i]
	}

	return nil
}

// check verifies the inputs carry boxes and match the per type scales
func (m *AveragePrecisionAtOKS) check(in Inputs) error {

	if err := requireBox(in, "average precision"); err != nil {
		return err
	}

	return requireScales(m.Params.PerTypeScales, in.NumTypes())
}

// precisions returns the precision at every threshold
func (m *AveragePrecisionAtOKS) precisions() []float64 {

	out := make([]float64, len(m.truePositives))

	for i, tp := range m.truePositives {
		out[i] = ratio(tp, m.weight)
	}

	return out
}

// Result implements Metric
func (m *AveragePrecisionAtOKS) Result() map[string]float64 {

	p := m.precisions()
	out := make(map[string]float64, len(p)+1)

	for i, name := range m.precisionNames {
		out[name] = p[i]
	}

	out[m.apName] = stat.Mean(p, nil)

	return out
}

// Reset implements Metric
func (m *AveragePrecisionAtOKS) Reset() {
	for i := range m.truePositives {
		m.truePositives[i] = 0
	}
	m.weight = 0
}

// Names implements Metric
func (m *AveragePrecisionAtOKS) Names() []string {
	return append(append([]string(nil), m.precisionNames...), m.apName)
}

// Merge implements Metric
func (m *AveragePrecisionAtOKS) Merge(other Metric) error {

	o, ok := other.(*AveragePrecisionAtOKS)

	if !ok || o == nil || o.apName != m.apName ||
		!sameFloats(o.Params.Thresholds, m.Params.Thresholds) ||
		!sameFloats(o.Params.PerTypeScales, m.Params.PerTypeScales) {
		return mergeMismatch(m, other)
	}

	for i := range m.truePositives {
		m.truePositives[i] += o.truePositives[i]
	}
	m.weight += o.weight

	return nil
}
