package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/swdee/go-posemetrics"
)

// boxJSON is a single bounding box, Heading is optional
type boxJSON struct {
	Center  []float64 `json:"center"`
	Size    []float64 `json:"size"`
	Heading *float64  `json:"heading,omitempty"`
}

// objectJSON is a single annotated or predicted object
type objectJSON struct {
	Location   [][]float64              `json:"location"`
	Visibility []posemetrics.Visibility `json:"visibility"`
	Box        boxJSON                  `json:"box"`
}

// sceneJSON is the file representation of a scene
type sceneJSON struct {
	ID          string       `json:"id"`
	GroundTruth []objectJSON `json:"ground_truth"`
	Prediction  []objectJSON `json:"prediction"`
}

// loadScenes reads a JSON list of scenes
func loadScenes(path string) ([]posemetrics.Scene, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("failed to read scenes file: %w", err)
	}

	var raw []sceneJSON

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse scenes JSON: %w", err)
	}

	scenes := make([]posemetrics.Scene, len(raw))

	for i, s := range raw {
		scenes[i] = posemetrics.Scene{
			ID:          s.ID,
			GroundTruth: toPoseEstimations(s.GroundTruth),
			Prediction:  toPoseEstimations(s.Prediction),
		}

		if scenes[i].ID == "" {
			scenes[i].ID = fmt.Sprintf("%d", i)
		}
	}

	return scenes, nil
}

// toPoseEstimations converts file objects into a batch.  If any object has a
// heading the boxes are rotated and objects without one get heading 0.
func toPoseEstimations(objs []objectJSON) posemetrics.PoseEstimations {

	p := posemetrics.PoseEstimations{
		Keypoints: posemetrics.Keypoints{
			Location:   make([][][]float64, len(objs)),
			Visibility: make([][]posemetrics.Visibility, len(objs)),
		},
		Box: &posemetrics.BoundingBoxes{
			Center: make([][]float64, len(objs)),
			Size:   make([][]float64, len(objs)),
		},
	}

	rotated := false

	for i, o := range objs {
		p.Keypoints.Location[i] = o.Location
		p.Keypoints.Visibility[i] = o.Visibility
		p.Box.Center[i] = o.Box.Center
		p.Box.Size[i] = o.Box.Size

		if o.Box.Heading != nil {
			rotated = true
		}
	}

	if rotated {
		p.Box.Heading = make([]float64, len(objs))

		for i, o := range objs {
			if o.Box.Heading != nil {
				p.Box.Heading[i] = *o.Box.Heading
			}
		}
	}

	return p
}
