package matcher

import "sort"

// candidate is a possible pairing of ground truth row gt with prediction pr
type candidate struct {
	gt  int
	pr  int
	iou float64
}

// greedyPairs selects pairs by descending overlap until no pair above
// minOverlap has both sides free.  Candidates are listed row major so the
// stable sort breaks ties by the lowest ground truth then prediction index.
// The returned pairs are ordered by ground truth index.
func greedyPairs(ious [][]float64, minOverlap float64) [][2]int {

	var cands []candidate

	for i, row := range ious {
		for j, iou := range row {
			if iou > minOverlap {
				cands = append(cands, candidate{gt: i, pr: j, iou: iou})
			}
		}
	}

	sort.SliceStable(cands, func(a, b int) bool {
		return cands[a].iou > cands[b].iou
	})

	numCols := 0
	if len(ious) > 0 {
		numCols = len(ious[0])
	}

	usedGT := make([]bool, len(ious))
	usedPR := make([]bool, numCols)
	pairs := make([][2]int, 0, min(len(ious), numCols))

	for _, c := range cands {
		if usedGT[c.gt] || usedPR[c.pr] {
			continue
		}

		usedGT[c.gt] = true
		usedPR[c.pr] = true
		pairs = append(pairs, [2]int{c.gt, c.pr})
	}

	sortPairs(pairs)

	return pairs
}

// sortPairs orders pairs by ground truth index
func sortPairs(pairs [][2]int) {
	sort.Slice(pairs, func(a, b int) bool {
		return pairs[a][0] < pairs[b][0]
	})
}
