package matcher

// hungarianPairs finds the assignment minimising the total cost 1 - IoU.  The
// cost matrix is extended with dummy rows and columns priced at half the
// cost limit so leaving a pair unmatched is preferred over any pair at or
// below minOverlap.  Pairs not exceeding minOverlap are then discarded.
func hungarianPairs(ious [][]float64, minOverlap float64) ([][2]int, error) {

	nRows := len(ious)

	if nRows == 0 {
		return nil, nil
	}

	nCols := len(ious[0])

	if nCols == 0 {
		return nil, nil
	}

	costLimit := 1 - minOverlap
	n := nRows + nCols

	cost := make([][]float64, n)

	for i := range cost {
		cost[i] = make([]float64, n)

		for j := range cost[i] {
			switch {
			case i < nRows && j < nCols:
				cost[i][j] = 1 - ious[i][j]
			case i >= nRows && j >= nCols:
				cost[i][j] = 0
			default:
				cost[i][j] = costLimit / 2
			}
		}
	}

	rowsol, _, err := solveLAPJV(cost)

	if err != nil {
		return nil, err
	}

	var pairs [][2]int

	for i := 0; i < nRows; i++ {
		j := rowsol[i]

		if j < 0 || j >= nCols {
			continue
		}

		if ious[i][j] > minOverlap {
			pairs = append(pairs, [2]int{i, j})
		}
	}

	sortPairs(pairs)

	return pairs, nil
}
