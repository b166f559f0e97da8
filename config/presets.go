package config

import (
	"fmt"
	"sort"

	"github.com/swdee/go-posemetrics"
)

// Preset names accepted by Preset
const (
	PresetCamera = "camera"
	PresetLaser  = "laser"
	PresetAll    = "all"
)

var (
	// sharedOrder is the body keypoint order common to every preset
	sharedOrder = []posemetrics.KeypointType{
		posemetrics.KeypointTypeLeftShoulder,
		posemetrics.KeypointTypeRightShoulder,
		posemetrics.KeypointTypeLeftElbow,
		posemetrics.KeypointTypeRightElbow,
		posemetrics.KeypointTypeLeftWrist,
		posemetrics.KeypointTypeRightWrist,
		posemetrics.KeypointTypeLeftHip,
		posemetrics.KeypointTypeRightHip,
		posemetrics.KeypointTypeLeftKnee,
		posemetrics.KeypointTypeRightKnee,
		posemetrics.KeypointTypeLeftAnkle,
		posemetrics.KeypointTypeRightAnkle,
	}

	// DefaultPCKThresholds are fractions of the object scale
	DefaultPCKThresholds = []float64{0.05, 0.1, 0.2, 0.3, 0.4, 0.5}

	// DefaultOKSThresholds are 0.50 to 0.95 in steps of 0.05
	DefaultOKSThresholds = []float64{0.5, 0.55, 0.6, 0.65, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95}

	// DefaultPerTypeScales are the COCO keypoint sigmas doubled, the head
	// points without a COCO counterpart use the shoulder scale
	DefaultPerTypeScales = map[posemetrics.KeypointType]float64{
		posemetrics.KeypointTypeNose:          0.052,
		posemetrics.KeypointTypeLeftShoulder:  0.158,
		posemetrics.KeypointTypeRightShoulder: 0.158,
		posemetrics.KeypointTypeLeftElbow:     0.144,
		posemetrics.KeypointTypeRightElbow:    0.144,
		posemetrics.KeypointTypeLeftWrist:     0.124,
		posemetrics.KeypointTypeRightWrist:    0.124,
		posemetrics.KeypointTypeLeftHip:       0.214,
		posemetrics.KeypointTypeRightHip:      0.214,
		posemetrics.KeypointTypeLeftKnee:      0.174,
		posemetrics.KeypointTypeRightKnee:     0.174,
		posemetrics.KeypointTypeLeftAnkle:     0.178,
		posemetrics.KeypointTypeRightAnkle:    0.178,
		posemetrics.KeypointTypeForehead:      0.158,
		posemetrics.KeypointTypeHeadCenter:    0.158,
	}
)

// DefaultCamera returns the preset for camera keypoints, the shared body
// points plus nose and forehead
func DefaultCamera() *MetricConfig {
	return newPreset(posemetrics.KeypointTypeNose, posemetrics.KeypointTypeForehead)
}

// DefaultLaser returns the preset for laser keypoints, the shared body points
// plus nose and head center
func DefaultLaser() *MetricConfig {
	return newPreset(posemetrics.KeypointTypeNose, posemetrics.KeypointTypeHeadCenter)
}

// DefaultAll returns the preset covering every keypoint type
func DefaultAll() *MetricConfig {
	return newPreset(posemetrics.KeypointTypeNose, posemetrics.KeypointTypeForehead,
		posemetrics.KeypointTypeHeadCenter)
}

// Preset returns the named preset
func Preset(name string) (*MetricConfig, error) {

	switch name {
	case PresetCamera:
		return DefaultCamera(), nil
	case PresetLaser:
		return DefaultLaser(), nil
	case PresetAll:
		return DefaultAll(), nil
	}

	return nil, fmt.Errorf("%w: unknown preset %q, expected one of %v",
		posemetrics.ErrConfig, name, PresetNames())
}

// PresetNames returns the names accepted by Preset in sorted order
func PresetNames() []string {
	names := []string{PresetCamera, PresetLaser, PresetAll}
	sort.Strings(names)
	return names
}

// newPreset builds a preset from the shared order followed by the given head
// keypoints
func newPreset(head ...posemetrics.KeypointType) *MetricConfig {

	order := append(append([]posemetrics.KeypointType(nil), sharedOrder...), head...)

	scales := make(map[posemetrics.KeypointType]float64, len(order))
	for _, t := range order {
		scales[t] = DefaultPerTypeScales[t]
	}

	return &MetricConfig{
		SrcOrder: order,
		Subsets: []SubsetConfig{
			pair("SHOULDERS", posemetrics.KeypointTypeLeftShoulder, posemetrics.KeypointTypeRightShoulder),
			pair("ELBOWS", posemetrics.KeypointTypeLeftElbow, posemetrics.KeypointTypeRightElbow),
			pair("WRISTS", posemetrics.KeypointTypeLeftWrist, posemetrics.KeypointTypeRightWrist),
			pair("HIPS", posemetrics.KeypointTypeLeftHip, posemetrics.KeypointTypeRightHip),
			pair("KNEES", posemetrics.KeypointTypeLeftKnee, posemetrics.KeypointTypeRightKnee),
			pair("ANKLES", posemetrics.KeypointTypeLeftAnkle, posemetrics.KeypointTypeRightAnkle),
			{Name: "ALL", Types: append([]posemetrics.KeypointType(nil), order...)},
			{Name: "HEAD", Types: append([]posemetrics.KeypointType(nil), head...)},
		},
		PCKThresholds:      append([]float64(nil), DefaultPCKThresholds...),
		PCKUseObjectScale:  true,
		OKSThresholds:      append([]float64(nil), DefaultOKSThresholds...),
		PerTypeScales:      scales,
		PEMMismatchPenalty: 0.25,
	}
}

func pair(name string, left, right posemetrics.KeypointType) SubsetConfig {
	return SubsetConfig{Name: name, Types: []posemetrics.KeypointType{left, right}}
}
