package metrics

import (
	"github.com/swdee/go-posemetrics"
)

type Visibility = posemetrics.Visibility

// offsetInputs returns three objects with two keypoints each where the
// predictions are 1, 2, 3, 4, 5 and 6 units away from the ground truth
func offsetInputs(gtVis, prVis [][]Visibility) Inputs {
	return Inputs{
		GroundTruth: posemetrics.Keypoints{
			Location: [][][]float64{
				{{1, 1}, {-1, -1}},
				{{2, 2}, {-2, -2}},
				{{3, 3}, {-3, -3}},
			},
			Visibility: gtVis,
		},
		Prediction: posemetrics.Keypoints{
			Location: [][][]float64{
				{{1, 0}, {1, -1}},
				{{2, -1}, {2, -2}},
				{{3, -2}, {-3, 3}},
			},
			Visibility: prVis,
		},
	}
}

func allVisible() [][]Visibility {
	return [][]Visibility{{2, 2}, {2, 2}, {2, 2}}
}

// withObjectScales attaches boxes at the origin with scales 1, 10 and 20
func withObjectScales(in Inputs) Inputs {
	in.Box = &posemetrics.BoundingBoxes{
		Center: [][]float64{{0, 0}, {0, 0}, {0, 0}},
		Size:   [][]float64{{1, 1}, {10, 10}, {20, 20}},
	}
	return in
}

// gatherInputs returns the objects at indices
func gatherInputs(in Inputs, indices []int) Inputs {
	return Inputs{
		GroundTruth: in.GroundTruth.Gather(indices),
		Prediction:  in.Prediction.Gather(indices),
		Box:         in.Box.Gather(indices),
	}
}
