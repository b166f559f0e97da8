package posemetrics

import (
	"fmt"
	"math"
	"strings"
)

// Visibility is the annotation state of a single keypoint
type Visibility int8

const (
	// Invisible means the keypoint is not visible or not applicable
	Invisible Visibility = 0
	// VisibleUnused means the keypoint is visible but its location is not
	// reliable enough for geometric comparison
	VisibleUnused Visibility = 1
	// VisibleUsable means the keypoint is visible and its location is usable
	VisibleUsable Visibility = 2
)

// IsVisible returns true for any visible state
func (v Visibility) IsVisible() bool {
	return v > Invisible
}

// Valid returns true if v is one of the defined visibility states
func (v Visibility) Valid() bool {
	return v >= Invisible && v <= VisibleUsable
}

// KeypointType identifies a body keypoint.  The numeric values follow the
// dataset label definition so they survive round trips through serialized
// results.
type KeypointType int

const (
	KeypointTypeUnspecified   KeypointType = 0
	KeypointTypeNose          KeypointType = 1
	KeypointTypeLeftShoulder  KeypointType = 5
	KeypointTypeLeftElbow     KeypointType = 6
	KeypointTypeLeftWrist     KeypointType = 7
	KeypointTypeLeftHip       KeypointType = 8
	KeypointTypeLeftKnee      KeypointType = 9
	KeypointTypeLeftAnkle     KeypointType = 10
	KeypointTypeRightShoulder KeypointType = 13
	KeypointTypeRightElbow    KeypointType = 14
	KeypointTypeRightWrist    KeypointType = 15
	KeypointTypeRightHip      KeypointType = 16
	KeypointTypeRightKnee     KeypointType = 17
	KeypointTypeRightAnkle    KeypointType = 18
	KeypointTypeForehead      KeypointType = 19
	KeypointTypeHeadCenter    KeypointType = 20
)

var keypointTypeNames = map[KeypointType]string{
	KeypointTypeUnspecified:   "UNSPECIFIED",
	KeypointTypeNose:          "NOSE",
	KeypointTypeLeftShoulder:  "LEFT_SHOULDER",
	KeypointTypeLeftElbow:     "LEFT_ELBOW",
	KeypointTypeLeftWrist:     "LEFT_WRIST",
	KeypointTypeLeftHip:       "LEFT_HIP",
	KeypointTypeLeftKnee:      "LEFT_KNEE",
	KeypointTypeLeftAnkle:     "LEFT_ANKLE",
	KeypointTypeRightShoulder: "RIGHT_SHOULDER",
	KeypointTypeRightElbow:    "RIGHT_ELBOW",
	KeypointTypeRightWrist:    "RIGHT_WRIST",
	KeypointTypeRightHip:      "RIGHT_HIP",
	KeypointTypeRightKnee:     "RIGHT_KNEE",
	KeypointTypeRightAnkle:    "RIGHT_ANKLE",
	KeypointTypeForehead:      "FOREHEAD",
	KeypointTypeHeadCenter:    "HEAD_CENTER",
}

// String returns the upper case name of the keypoint type
func (t KeypointType) String() string {
	if name, ok := keypointTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("KeypointType(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler so keypoint types can be used
// as JSON values and map keys
func (t KeypointType) MarshalText() ([]byte, error) {
	if _, ok := keypointTypeNames[t]; !ok {
		return nil, fmt.Errorf("%w: unknown keypoint type %d", ErrConfig, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, the "KEYPOINT_TYPE_"
// prefix is optional
func (t *KeypointType) UnmarshalText(text []byte) error {

	name := strings.TrimPrefix(strings.ToUpper(string(text)), "KEYPOINT_TYPE_")

	for kt, n := range keypointTypeNames {
		if n == name {
			*t = kt
			return nil
		}
	}

	return fmt.Errorf("%w: unknown keypoint type %q", ErrConfig, string(text))
}

// Keypoints holds the keypoints of a batch of objects.  Keypoint type
// identity is positional, index j of every object refers to the same type.
type Keypoints struct {
	// Location is laid out as [object][keypoint][axis] with 2 or 3 axes
	Location [][][]float64
	// Visibility is laid out as [object][keypoint]
	Visibility [][]Visibility
}

// Len returns the number of objects
func (k Keypoints) Len() int {
	return len(k.Visibility)
}

// NumTypes returns the number of keypoint types per object, or 0 for an empty
// batch
func (k Keypoints) NumTypes() int {
	if len(k.Visibility) == 0 {
		return 0
	}
	return len(k.Visibility[0])
}

// Dims returns the number of coordinate axes, or 0 if it can not be
// determined from an empty batch
func (k Keypoints) Dims() int {
	for _, obj := range k.Location {
		if len(obj) > 0 {
			return len(obj[0])
		}
	}
	return 0
}

// Validate checks the batch is rectangular, has 2 or 3 axes, finite
// coordinates and only defined visibility values
func (k Keypoints) Validate() error {

	if len(k.Location) != len(k.Visibility) {
		return fmt.Errorf("%w: keypoints have %d locations but %d visibilities",
			ErrShape, len(k.Location), len(k.Visibility))
	}

	numTypes := k.NumTypes()
	dims := k.Dims()

	if len(k.Location) > 0 && numTypes > 0 && dims != 2 && dims != 3 {
		return fmt.Errorf("%w: keypoints must have 2 or 3 axes, got %d", ErrShape, dims)
	}

	for i := range k.Location {
		if len(k.Location[i]) != numTypes || len(k.Visibility[i]) != numTypes {
			return fmt.Errorf("%w: object %d has %d locations and %d visibilities, expected %d",
				ErrShape, i, len(k.Location[i]), len(k.Visibility[i]), numTypes)
		}

		for j, pt := range k.Location[i] {
			if len(pt) != dims {
				return fmt.Errorf("%w: object %d keypoint %d has %d axes, expected %d",
					ErrShape, i, j, len(pt), dims)
			}

			for _, c := range pt {
				if math.IsNaN(c) || math.IsInf(c, 0) {
					return fmt.Errorf("%w: object %d keypoint %d has non-finite coordinate",
						ErrShape, i, j)
				}
			}

			if !k.Visibility[i][j].Valid() {
				return fmt.Errorf("%w: object %d keypoint %d has invalid visibility %d",
					ErrShape, i, j, k.Visibility[i][j])
			}
		}
	}

	return nil
}

// Select returns the keypoints at the given keypoint indices for every
// object.  Coordinates are copied.
func (k Keypoints) Select(indices []int) Keypoints {

	out := Keypoints{
		Location:   make([][][]float64, len(k.Location)),
		Visibility: make([][]Visibility, len(k.Visibility)),
	}

	for i := range k.Location {
		out.Location[i] = make([][]float64, len(indices))
		out.Visibility[i] = make([]Visibility, len(indices))

		for n, j := range indices {
			out.Location[i][n] = append([]float64(nil), k.Location[i][j]...)
			out.Visibility[i][n] = k.Visibility[i][j]
		}
	}

	return out
}

// Gather returns the objects at the given object indices, in that order
func (k Keypoints) Gather(indices []int) Keypoints {

	out := Keypoints{
		Location:   make([][][]float64, 0, len(indices)),
		Visibility: make([][]Visibility, 0, len(indices)),
	}

	for _, i := range indices {
		out.Location = append(out.Location, copyPoints(k.Location[i]))
		out.Visibility = append(out.Visibility, append([]Visibility(nil), k.Visibility[i]...))
	}

	return out
}

// ZeroKeypoints returns n objects with numTypes keypoints at the origin, all
// with Invisible visibility
func ZeroKeypoints(n, numTypes, dims int) Keypoints {

	out := Keypoints{
		Location:   make([][][]float64, n),
		Visibility: make([][]Visibility, n),
	}

	for i := 0; i < n; i++ {
		out.Location[i] = make([][]float64, numTypes)

		for j := range out.Location[i] {
			out.Location[i][j] = make([]float64, dims)
		}

		out.Visibility[i] = make([]Visibility, numTypes)
	}

	return out
}

// ConcatKeypoints joins batches along the object axis
func ConcatKeypoints(batches ...Keypoints) Keypoints {

	var out Keypoints

	for _, b := range batches {
		for i := range b.Location {
			out.Location = append(out.Location, copyPoints(b.Location[i]))
			out.Visibility = append(out.Visibility, append([]Visibility(nil), b.Visibility[i]...))
		}
	}

	return out
}

func copyPoints(pts [][]float64) [][]float64 {
	out := make([][]float64, len(pts))
	for j, pt := range pts {
		out[j] = append([]float64(nil), pt...)
	}
	return out
}
