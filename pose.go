package posemetrics

import "fmt"

// PoseEstimations is a batch of objects of one scene, each with keypoints and
// a bounding box
type PoseEstimations struct {
	Keypoints Keypoints
	Box       *BoundingBoxes
}

// Len returns the number of objects
func (p PoseEstimations) Len() int {
	return p.Keypoints.Len()
}

// Validate checks keypoints and boxes are well formed and describe the same
// number of objects
func (p PoseEstimations) Validate() error {

	if err := p.Keypoints.Validate(); err != nil {
		return err
	}

	if err := p.Box.Validate(); err != nil {
		return err
	}

	if p.Box != nil && p.Box.Len() != p.Keypoints.Len() {
		return fmt.Errorf("%w: %d keypoint objects but %d boxes",
			ErrShape, p.Keypoints.Len(), p.Box.Len())
	}

	return nil
}

// Gather returns the objects at the given indices, in that order
func (p PoseEstimations) Gather(indices []int) PoseEstimations {
	return PoseEstimations{
		Keypoints: p.Keypoints.Gather(indices),
		Box:       p.Box.Gather(indices),
	}
}

// ZeroPoseEstimations returns n placeholder objects with zero geometry and
// Invisible keypoints
func ZeroPoseEstimations(n, numTypes, keypointDims, boxDims int,
	withHeading bool) PoseEstimations {

	return PoseEstimations{
		Keypoints: ZeroKeypoints(n, numTypes, keypointDims),
		Box:       ZeroBoxes(n, boxDims, withHeading),
	}
}

// ConcatPoseEstimations joins batches along the object axis
func ConcatPoseEstimations(batches ...PoseEstimations) PoseEstimations {

	kps := make([]Keypoints, len(batches))
	boxes := make([]*BoundingBoxes, len(batches))

	for i, b := range batches {
		kps[i] = b.Keypoints
		boxes[i] = b.Box
	}

	return PoseEstimations{
		Keypoints: ConcatKeypoints(kps...),
		Box:       ConcatBoxes(boxes...),
	}
}

// Scene groups the ground truth and predicted objects of one frame.  Matching
// never crosses scene boundaries.
type Scene struct {
	// ID is an optional identifier used in logs and reports
	ID          string
	GroundTruth PoseEstimations
	Prediction  PoseEstimations
}
