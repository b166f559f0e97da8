package config

import (
	"fmt"

	"github.com/swdee/go-posemetrics"
	"github.com/swdee/go-posemetrics/metrics"
)

// CreateCombinedMetric builds the metric described by cfg.  Every subset gets
// MPJPE, PCK and AP at OKS results, named "<KIND>/<SUBSET>" followed by the
// threshold where there is one.
func CreateCombinedMetric(cfg *MetricConfig) (*metrics.CombinedMetric, error) {

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	subsets := make([]metrics.Subset, len(cfg.Subsets))
	for i, s := range cfg.Subsets {
		subsets[i] = metrics.Subset{Name: s.Name, Types: s.Types}
	}

	creators := []metrics.CreateFunc{
		func(subset string, _ []posemetrics.KeypointType) (metrics.Metric, error) {
			return metrics.NewMeanPerJointPositionError("MPJPE/" + subset), nil
		},
		func(subset string, _ []posemetrics.KeypointType) (metrics.Metric, error) {
			return metrics.NewPercentageOfCorrectKeypoints(metrics.PCKParams{
				Name:           "PCK/" + subset,
				Thresholds:     cfg.PCKThresholds,
				UseObjectScale: cfg.PCKUseObjectScale,
			})
		},
		func(subset string, types []posemetrics.KeypointType) (metrics.Metric, error) {
			return metrics.NewAveragePrecisionAtOKS(metrics.APParams{
				Name:          "OKS/" + subset,
				Thresholds:    cfg.OKSThresholds,
				PerTypeScales: cfg.ScalesFor(types),
			})
		},
	}

	if cfg.IncludePEM {
		creators = append(creators, func(subset string, _ []posemetrics.KeypointType) (metrics.Metric, error) {
			return metrics.NewPoseEstimationMetric("PEM/"+subset, cfg.PEMMismatchPenalty)
		})
	}

	if cfg.IncludeVisibility {
		creators = append(creators,
			func(subset string, _ []posemetrics.KeypointType) (metrics.Metric, error) {
				return metrics.NewKeypointVisibilityPrecision("VISIBILITY_PRECISION/" + subset), nil
			},
			func(subset string, _ []posemetrics.KeypointType) (metrics.Metric, error) {
				return metrics.NewKeypointVisibilityRecall("VISIBILITY_RECALL/" + subset), nil
			},
		)
	}

	members := make([]metrics.Metric, 0, len(creators))

	for _, create := range creators {
		m, err := metrics.NewMetricForSubsets(cfg.SrcOrder, subsets, create)

		if err != nil {
			return nil, fmt.Errorf("failed to create subset metric: %w", err)
		}

		members = append(members, m)
	}

	return metrics.NewCombinedMetric(members...)
}

// MetricNames returns the result names the metric built from cfg produces
func MetricNames(cfg *MetricConfig) ([]string, error) {

	m, err := CreateCombinedMetric(cfg)

	if err != nil {
		return nil, err
	}

	return m.Names(), nil
}
