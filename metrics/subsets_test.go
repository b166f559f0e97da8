package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-posemetrics"
)

var (
	leftShoulder  = posemetrics.KeypointTypeLeftShoulder
	rightShoulder = posemetrics.KeypointTypeRightShoulder
)

func createMPJPE(subset string, _ []posemetrics.KeypointType) (Metric, error) {
	return NewMeanPerJointPositionError("MPJPE/" + subset), nil
}

func TestMetricForSubsetsReturnsAllSubsets(t *testing.T) {

	metric, err := NewMetricForSubsets(
		[]posemetrics.KeypointType{leftShoulder, rightShoulder},
		[]Subset{
			{Name: "LEFT", Types: []posemetrics.KeypointType{leftShoulder}},
			{Name: "RIGHT", Types: []posemetrics.KeypointType{rightShoulder}},
		},
		createMPJPE,
	)
	require.NoError(t, err)

	require.NoError(t, metric.Update(offsetInputs(allVisible(), allVisible()), nil))
	res := metric.Result()

	assert.Equal(t, []string{"MPJPE/LEFT", "MPJPE/RIGHT"}, metric.Names())
	assert.Len(t, res, 2)
	assert.InDelta(t, (1+3+5)/3.0, res["MPJPE/LEFT"], 1e-5)
	assert.InDelta(t, (2+4+6)/3.0, res["MPJPE/RIGHT"], 1e-5)
}

func TestMetricForSubsetsPartitionAgreesWithWhole(t *testing.T) {

	order := []posemetrics.KeypointType{leftShoulder, rightShoulder}

	metric, err := NewMetricForSubsets(order,
		[]Subset{
			{Name: "LEFT", Types: []posemetrics.KeypointType{leftShoulder}},
			{Name: "RIGHT", Types: []posemetrics.KeypointType{rightShoulder}},
			// reordered keypoints give the same mean
			{Name: "ALL", Types: []posemetrics.KeypointType{rightShoulder, leftShoulder}},
		},
		createMPJPE,
	)
	require.NoError(t, err)

	require.NoError(t, metric.Update(offsetInputs(allVisible(), allVisible()), nil))
	res := metric.Result()

	// equal keypoint counts so the whole is the mean of the parts
	assert.InDelta(t, (res["MPJPE/LEFT"]+res["MPJPE/RIGHT"])/2, res["MPJPE/ALL"], 1e-9)
}

func TestMetricForSubsetsPassesTypesToCreate(t *testing.T) {

	var got []posemetrics.KeypointType

	_, err := NewMetricForSubsets(
		[]posemetrics.KeypointType{leftShoulder, rightShoulder},
		[]Subset{{Name: "RIGHT", Types: []posemetrics.KeypointType{rightShoulder}}},
		func(subset string, types []posemetrics.KeypointType) (Metric, error) {
			got = types
			return NewMeanPerJointPositionError(subset), nil
		},
	)
	require.NoError(t, err)

	assert.Equal(t, []posemetrics.KeypointType{rightShoulder}, got)
}

func TestMetricForSubsetsErrors(t *testing.T) {

	order := []posemetrics.KeypointType{leftShoulder, rightShoulder}

	_, err := NewMetricForSubsets(order,
		[]Subset{{Name: "HEAD", Types: []posemetrics.KeypointType{posemetrics.KeypointTypeNose}}},
		createMPJPE)
	assert.ErrorIs(t, err, posemetrics.ErrConfig)

	_, err = NewMetricForSubsets(order,
		[]Subset{
			{Name: "LEFT", Types: []posemetrics.KeypointType{leftShoulder}},
			{Name: "LEFT", Types: []posemetrics.KeypointType{rightShoulder}},
		},
		createMPJPE)
	assert.ErrorIs(t, err, posemetrics.ErrConfig)

	_, err = NewMetricForSubsets(order, nil, nil)
	assert.ErrorIs(t, err, posemetrics.ErrConfig)

	metric, err := NewMetricForSubsets(
		[]posemetrics.KeypointType{leftShoulder, rightShoulder, posemetrics.KeypointTypeNose},
		[]Subset{{Name: "LEFT", Types: []posemetrics.KeypointType{leftShoulder}}},
		createMPJPE)
	require.NoError(t, err)

	err = metric.Update(offsetInputs(allVisible(), allVisible()), nil)
	assert.ErrorIs(t, err, posemetrics.ErrShape)
}

func TestMetricForSubsetsMergeAndReset(t *testing.T) {

	order := []posemetrics.KeypointType{leftShoulder, rightShoulder}
	subsets := []Subset{
		{Name: "LEFT", Types: []posemetrics.KeypointType{leftShoulder}},
		{Name: "RIGHT", Types: []posemetrics.KeypointType{rightShoulder}},
	}
	in := offsetInputs(allVisible(), allVisible())

	single, err := NewMetricForSubsets(order, subsets, createMPJPE)
	require.NoError(t, err)
	require.NoError(t, single.Update(in, nil))

	a, err := NewMetricForSubsets(order, subsets, createMPJPE)
	require.NoError(t, err)
	b, err := NewMetricForSubsets(order, subsets, createMPJPE)
	require.NoError(t, err)

	require.NoError(t, a.Update(gatherInputs(in, []int{2}), nil))
	require.NoError(t, b.Update(gatherInputs(in, []int{0, 1}), nil))
	require.NoError(t, a.Merge(b))

	assert.InDeltaMapValues(t, single.Result(), a.Result(), 1e-9)

	a.Reset()
	assert.Equal(t, map[string]float64{"MPJPE/LEFT": 0, "MPJPE/RIGHT": 0}, a.Result())
}

func TestMetricForSubsetsRejectedUpdateLeavesTotalsUnchanged(t *testing.T) {

	create := func(subset string, _ []posemetrics.KeypointType) (Metric, error) {
		if subset == "LEFT" {
			return NewMeanPerJointPositionError("MPJPE/" + subset), nil
		}
		return NewPercentageOfCorrectKeypoints(PCKParams{
			Name:           "PCK/" + subset,
			Thresholds:     []float64{0.5},
			UseObjectScale: true,
		})
	}

	metric, err := NewMetricForSubsets(
		[]posemetrics.KeypointType{leftShoulder, rightShoulder},
		[]Subset{
			{Name: "LEFT", Types: []posemetrics.KeypointType{leftShoulder}},
			{Name: "RIGHT", Types: []posemetrics.KeypointType{rightShoulder}},
		},
		create,
	)
	require.NoError(t, err)

	in := offsetInputs(allVisible(), allVisible())
	assert.ErrorIs(t, metric.Update(in, nil), posemetrics.ErrConfig)
	assert.Equal(t, 0.0, metric.Result()["MPJPE/LEFT"])

	require.NoError(t, metric.Update(withObjectScales(in), nil))
	assert.InDelta(t, 3.0, metric.Result()["MPJPE/LEFT"], 1e-5)

	var missing *MetricForSubsets
	assert.ErrorIs(t, metric.Merge(missing), posemetrics.ErrConfig)
}
