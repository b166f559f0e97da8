// Package config describes which keypoint metrics to compute and builds them.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/swdee/go-posemetrics"
	"github.com/swdee/go-posemetrics/matcher"
)

// maxFileSize is the largest config file LoadConfig accepts
const maxFileSize = 1 * 1024 * 1024

// SubsetConfig is a named group of keypoint types evaluated together
type SubsetConfig struct {
	Name  string                     `json:"name"`
	Types []posemetrics.KeypointType `json:"types"`
}

// MatcherConfig selects how predictions are aligned to ground truth
type MatcherConfig struct {
	// Strategy is "greedy" or "hungarian", empty means greedy
	Strategy   string  `json:"strategy,omitempty"`
	MinOverlap float64 `json:"min_overlap,omitempty"`
	MinLength  int     `json:"min_length,omitempty"`
}

// MetricConfig is the declarative description of a combined metric
type MetricConfig struct {
	// SrcOrder is the keypoint type at each position of the input keypoints
	SrcOrder []posemetrics.KeypointType `json:"src_order"`
	// Subsets are evaluated in order, each producing its own results
	Subsets []SubsetConfig `json:"subsets"`
	// PCKThresholds are relative to the object scale when PCKUseObjectScale
	// is set
	PCKThresholds     []float64 `json:"pck_thresholds"`
	PCKUseObjectScale bool      `json:"pck_use_object_scale"`
	OKSThresholds     []float64 `json:"oks_thresholds"`
	// PerTypeScales holds the OKS scale of every keypoint type in SrcOrder
	PerTypeScales map[posemetrics.KeypointType]float64 `json:"per_type_scales"`

	// IncludePEM adds the pose estimation metric for every subset
	IncludePEM         bool    `json:"include_pem,omitempty"`
	PEMMismatchPenalty float64 `json:"pem_mismatch_penalty,omitempty"`
	// IncludeVisibility adds keypoint visibility precision and recall for
	// every subset
	IncludeVisibility bool `json:"include_visibility,omitempty"`

	Matcher MatcherConfig `json:"matcher"`
}

// LoadConfig loads a MetricConfig from a JSON file.  The file must have a
// .json extension and be under 1MB.
func LoadConfig(path string) (*MetricConfig, error) {

	cleanPath := filepath.Clean(path)

	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)

	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &MetricConfig{}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration can build a metric
func (c *MetricConfig) Validate() error {

	if len(c.SrcOrder) == 0 {
		return fmt.Errorf("%w: src_order must not be empty", posemetrics.ErrConfig)
	}

	known := make(map[posemetrics.KeypointType]bool, len(c.SrcOrder))

	for _, t := range c.SrcOrder {
		if t == posemetrics.KeypointTypeUnspecified {
			return fmt.Errorf("%w: src_order contains an unspecified keypoint type", posemetrics.ErrConfig)
		}
		if known[t] {
			return fmt.Errorf("%w: src_order repeats %v", posemetrics.ErrConfig, t)
		}
		known[t] = true
	}

	if len(c.Subsets) == 0 {
		return fmt.Errorf("%w: at least one subset is required", posemetrics.ErrConfig)
	}

	names := make(map[string]bool, len(c.Subsets))

	for _, s := range c.Subsets {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: subset name must not be empty", posemetrics.ErrConfig)
		}
		if names[s.Name] {
			return fmt.Errorf("%w: duplicate subset %q", posemetrics.ErrConfig, s.Name)
		}
		names[s.Name] = true

		if len(s.Types) == 0 {
			return fmt.Errorf("%w: subset %q has no keypoint types", posemetrics.ErrConfig, s.Name)
		}

		for _, t := range s.Types {
			if !known[t] {
				return fmt.Errorf("%w: subset %q uses %v which is not in src_order",
					posemetrics.ErrConfig, s.Name, t)
			}
		}
	}

	if err := validThresholds("pck_thresholds", c.PCKThresholds); err != nil {
		return err
	}

	if err := validThresholds("oks_thresholds", c.OKSThresholds); err != nil {
		return err
	}

	for _, t := range c.SrcOrder {
		s, ok := c.PerTypeScales[t]

		if !ok {
			return fmt.Errorf("%w: per_type_scales has no scale for %v", posemetrics.ErrConfig, t)
		}

		if !(s > 0) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: per_type_scales for %v must be positive, got %v",
				posemetrics.ErrConfig, t, s)
		}
	}

	if c.PEMMismatchPenalty < 0 || math.IsNaN(c.PEMMismatchPenalty) {
		return fmt.Errorf("%w: pem_mismatch_penalty must be non-negative, got %v",
			posemetrics.ErrConfig, c.PEMMismatchPenalty)
	}

	if _, err := c.MatcherParams(); err != nil {
		return err
	}

	return nil
}

func validThresholds(field string, thresholds []float64) error {

	if len(thresholds) == 0 {
		return fmt.Errorf("%w: %s must not be empty", posemetrics.ErrConfig, field)
	}

	for _, t := range thresholds {
		if !(t >= 0) || math.IsInf(t, 0) {
			return fmt.Errorf("%w: %s has invalid value %v", posemetrics.ErrConfig, field, t)
		}
	}

	return nil
}

// MatcherParams converts the matcher section into matcher parameters
func (c *MetricConfig) MatcherParams() (matcher.Params, error) {

	p := matcher.DefaultParams()

	switch strings.ToLower(c.Matcher.Strategy) {
	case "", "greedy":
		p.Strategy = matcher.Greedy
	case "hungarian":
		p.Strategy = matcher.Hungarian
	default:
		return p, fmt.Errorf("%w: unknown matcher strategy %q", posemetrics.ErrConfig, c.Matcher.Strategy)
	}

	p.MinOverlap = c.Matcher.MinOverlap
	p.MinLength = c.Matcher.MinLength

	if _, err := matcher.NewMatcher(p); err != nil {
		return p, err
	}

	return p, nil
}

// ScalesFor returns the per type scales of types in order
func (c *MetricConfig) ScalesFor(types []posemetrics.KeypointType) []float64 {

	out := make([]float64, len(types))

	for i, t := range types {
		out[i] = c.PerTypeScales[t]
	}

	return out
}
