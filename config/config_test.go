package config

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-posemetrics"
	"github.com/swdee/go-posemetrics/matcher"
	"github.com/swdee/go-posemetrics/metrics"
)

var presetSubsets = []string{"SHOULDERS", "ELBOWS", "WRISTS", "HIPS", "KNEES", "ANKLES", "ALL", "HEAD"}

// expectedNames lists the result names a preset metric must produce
func expectedNames() []string {

	var names []string

	for _, s := range presetSubsets {
		names = append(names, "MPJPE/"+s)

		for _, t := range DefaultPCKThresholds {
			names = append(names, fmt.Sprintf("PCK/%s @ %.2f", s, t))
		}

		for _, t := range DefaultOKSThresholds {
			names = append(names, fmt.Sprintf("OKS/%s P @ %.2f", s, t))
		}

		names = append(names, "OKS/"+s+" AP")
	}

	return names
}

// randomInputs returns n objects with numTypes keypoints of random location
// and visibility
func randomInputs(rng *rand.Rand, n, numTypes int) metrics.Inputs {

	kp := func() posemetrics.Keypoints {
		k := posemetrics.Keypoints{
			Location:   make([][][]float64, n),
			Visibility: make([][]posemetrics.Visibility, n),
		}
		for i := 0; i < n; i++ {
			k.Location[i] = make([][]float64, numTypes)
			k.Visibility[i] = make([]posemetrics.Visibility, numTypes)
			for j := 0; j < numTypes; j++ {
				k.Location[i][j] = []float64{rng.Float64() * 10, rng.Float64() * 10, rng.Float64() * 2}
				k.Visibility[i][j] = posemetrics.Visibility(rng.Intn(3))
			}
		}
		return k
	}

	box := &posemetrics.BoundingBoxes{
		Center: make([][]float64, n),
		Size:   make([][]float64, n),
	}

	for i := 0; i < n; i++ {
		box.Center[i] = []float64{5, 5, 1}
		box.Size[i] = []float64{1 + rng.Float64()*4, 1 + rng.Float64()*4, 2}
	}

	return metrics.Inputs{GroundTruth: kp(), Prediction: kp(), Box: box}
}

func TestPresetMetrics(t *testing.T) {

	tests := []struct {
		name      string
		cfg       *MetricConfig
		numPoints int
		head      []posemetrics.KeypointType
	}{
		{
			name:      PresetCamera,
			cfg:       DefaultCamera(),
			numPoints: 14,
			head:      []posemetrics.KeypointType{posemetrics.KeypointTypeNose, posemetrics.KeypointTypeForehead},
		},
		{
			name:      PresetLaser,
			cfg:       DefaultLaser(),
			numPoints: 14,
			head:      []posemetrics.KeypointType{posemetrics.KeypointTypeNose, posemetrics.KeypointTypeHeadCenter},
		},
		{
			name:      PresetAll,
			cfg:       DefaultAll(),
			numPoints: 15,
			head: []posemetrics.KeypointType{posemetrics.KeypointTypeNose,
				posemetrics.KeypointTypeForehead, posemetrics.KeypointTypeHeadCenter},
		},
	}

	rng := rand.New(rand.NewSource(42))

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			require.NoError(t, tc.cfg.Validate())
			require.Len(t, tc.cfg.SrcOrder, tc.numPoints)
			assert.Equal(t, tc.head, tc.cfg.Subsets[len(tc.cfg.Subsets)-1].Types)

			m, err := CreateCombinedMetric(tc.cfg)
			require.NoError(t, err)

			assert.ElementsMatch(t, expectedNames(), m.Names())

			require.NoError(t, m.Update(randomInputs(rng, 10, tc.numPoints), nil))

			res := m.Result()
			assert.Len(t, res, len(expectedNames()))

			for name, v := range res {
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s = %v", name, v)
			}

			// a batch with the wrong keypoint count is rejected
			err = m.Update(randomInputs(rng, 2, tc.numPoints-1), nil)
			assert.ErrorIs(t, err, posemetrics.ErrShape)
		})
	}
}

func TestPresetByName(t *testing.T) {

	for _, name := range PresetNames() {
		cfg, err := Preset(name)
		require.NoError(t, err, name)
		assert.NoError(t, cfg.Validate(), name)
	}

	_, err := Preset("radar")
	assert.ErrorIs(t, err, posemetrics.ErrConfig)
}

func TestPresetsAreIndependent(t *testing.T) {

	a := DefaultCamera()
	a.PCKThresholds[0] = 0.9
	a.Subsets[0].Types[0] = posemetrics.KeypointTypeNose
	a.PerTypeScales[posemetrics.KeypointTypeNose] = 1

	b := DefaultCamera()
	assert.Equal(t, 0.05, b.PCKThresholds[0])
	assert.Equal(t, posemetrics.KeypointTypeLeftShoulder, b.Subsets[0].Types[0])
	assert.Equal(t, 0.052, b.PerTypeScales[posemetrics.KeypointTypeNose])
}

func TestOptionalMetrics(t *testing.T) {

	cfg := DefaultCamera()
	cfg.IncludePEM = true
	cfg.IncludeVisibility = true

	names, err := MetricNames(cfg)
	require.NoError(t, err)

	assert.Contains(t, names, "PEM/ALL")
	assert.Contains(t, names, "VISIBILITY_PRECISION/HEAD")
	assert.Contains(t, names, "VISIBILITY_RECALL/KNEES")
	assert.Len(t, names, len(expectedNames())+3*len(presetSubsets))
}

func TestSubsetScales(t *testing.T) {

	cfg := DefaultLaser()

	head := cfg.Subsets[len(cfg.Subsets)-1]
	assert.Equal(t, []float64{0.052, 0.158}, cfg.ScalesFor(head.Types))
}

func TestValidate(t *testing.T) {

	tests := []struct {
		name   string
		modify func(c *MetricConfig)
	}{
		{"empty order", func(c *MetricConfig) { c.SrcOrder = nil }},
		{"repeated type", func(c *MetricConfig) { c.SrcOrder[1] = c.SrcOrder[0] }},
		{"unspecified type", func(c *MetricConfig) { c.SrcOrder[0] = posemetrics.KeypointTypeUnspecified }},
		{"no subsets", func(c *MetricConfig) { c.Subsets = nil }},
		{"duplicate subset", func(c *MetricConfig) { c.Subsets[1].Name = c.Subsets[0].Name }},
		{"blank subset", func(c *MetricConfig) { c.Subsets[0].Name = " " }},
		{"empty subset", func(c *MetricConfig) { c.Subsets[0].Types = nil }},
		{"unknown subset type", func(c *MetricConfig) {
			c.Subsets[0].Types = []posemetrics.KeypointType{posemetrics.KeypointTypeHeadCenter}
		}},
		{"no pck thresholds", func(c *MetricConfig) { c.PCKThresholds = nil }},
		{"negative oks threshold", func(c *MetricConfig) { c.OKSThresholds[0] = -0.5 }},
		{"missing scale", func(c *MetricConfig) { delete(c.PerTypeScales, posemetrics.KeypointTypeNose) }},
		{"zero scale", func(c *MetricConfig) { c.PerTypeScales[posemetrics.KeypointTypeNose] = 0 }},
		{"negative penalty", func(c *MetricConfig) { c.PEMMismatchPenalty = -1 }},
		{"unknown strategy", func(c *MetricConfig) { c.Matcher.Strategy = "random" }},
		{"overlap out of range", func(c *MetricConfig) { c.Matcher.MinOverlap = 1 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultCamera()
			tc.modify(cfg)

			assert.ErrorIs(t, cfg.Validate(), posemetrics.ErrConfig)

			_, err := CreateCombinedMetric(cfg)
			assert.ErrorIs(t, err, posemetrics.ErrConfig)
		})
	}
}

func TestMatcherParams(t *testing.T) {

	cfg := DefaultCamera()

	p, err := cfg.MatcherParams()
	require.NoError(t, err)
	assert.Equal(t, matcher.DefaultParams(), p)

	cfg.Matcher = MatcherConfig{Strategy: "Hungarian", MinOverlap: 0.3, MinLength: 4}

	p, err = cfg.MatcherParams()
	require.NoError(t, err)
	assert.Equal(t, matcher.Params{Strategy: matcher.Hungarian, MinOverlap: 0.3, MinLength: 4}, p)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {

	path := writeFile(t, "camera.json", `{
		"src_order": ["LEFT_SHOULDER", "RIGHT_SHOULDER", "KEYPOINT_TYPE_NOSE"],
		"subsets": [
			{"name": "SHOULDERS", "types": ["LEFT_SHOULDER", "RIGHT_SHOULDER"]},
			{"name": "HEAD", "types": ["NOSE"]}
		],
		"pck_thresholds": [0.1, 0.2],
		"pck_use_object_scale": true,
		"oks_thresholds": [0.5],
		"per_type_scales": {"LEFT_SHOULDER": 0.158, "RIGHT_SHOULDER": 0.158, "NOSE": 0.052},
		"include_pem": true,
		"pem_mismatch_penalty": 0.5,
		"matcher": {"strategy": "hungarian", "min_overlap": 0.1}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	expected := &MetricConfig{
		SrcOrder: []posemetrics.KeypointType{
			posemetrics.KeypointTypeLeftShoulder,
			posemetrics.KeypointTypeRightShoulder,
			posemetrics.KeypointTypeNose,
		},
		Subsets: []SubsetConfig{
			{Name: "SHOULDERS", Types: []posemetrics.KeypointType{
				posemetrics.KeypointTypeLeftShoulder, posemetrics.KeypointTypeRightShoulder}},
			{Name: "HEAD", Types: []posemetrics.KeypointType{posemetrics.KeypointTypeNose}},
		},
		PCKThresholds:     []float64{0.1, 0.2},
		PCKUseObjectScale: true,
		OKSThresholds:     []float64{0.5},
		PerTypeScales: map[posemetrics.KeypointType]float64{
			posemetrics.KeypointTypeLeftShoulder:  0.158,
			posemetrics.KeypointTypeRightShoulder: 0.158,
			posemetrics.KeypointTypeNose:          0.052,
		},
		IncludePEM:         true,
		PEMMismatchPenalty: 0.5,
		Matcher:            MatcherConfig{Strategy: "hungarian", MinOverlap: 0.1},
	}

	if diff := cmp.Diff(expected, cfg); diff != "" {
		t.Errorf("loaded config mismatch (-want +got):\n%s", diff)
	}

	names, err := MetricNames(cfg)
	require.NoError(t, err)
	assert.Contains(t, names, "PCK/HEAD @ 0.20")
	assert.Contains(t, names, "PEM/SHOULDERS")
}

func TestLoadConfigErrors(t *testing.T) {

	_, err := LoadConfig(writeFile(t, "config.yaml", "{}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".json extension")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stat config file")

	_, err = LoadConfig(writeFile(t, "broken.json", "{"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config JSON")

	_, err = LoadConfig(writeFile(t, "unknown.json", `{"src_order": ["TAIL"]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keypoint type")

	_, err = LoadConfig(writeFile(t, "empty.json", "{}"))
	assert.ErrorIs(t, err, posemetrics.ErrConfig)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, err = LoadConfig(writeFile(t, "large.json", `{"pad": "`+strings.Repeat("x", maxFileSize)+`"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file too large")
}
