package matcher

import (
	"testing"
)

// bruteForceCost returns the lowest total cost over all assignments
func bruteForceCost(cost [][]float64) float64 {

	n := len(cost)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	best := -1.0

	var permute func(k int)
	permute = func(k int) {
		if k == n {
			total := 0.0
			for i, j := range perm {
				total += cost[i][j]
			}
			if best < 0 || total < best {
				best = total
			}
			return
		}
		for i := k; i < n; i++ {
			perm[k], perm[i] = perm[i], perm[k]
			permute(k + 1)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}

	permute(0)

	return best
}

func runLapjvTest(t *testing.T, costMatrix [][]float64, expectedX, expectedY []int) {

	n := len(costMatrix)

	x, y, err := solveLAPJV(costMatrix)
	if err != nil {
		t.Fatalf("solveLAPJV returned an error: %v", err)
	}

	total := 0.0

	for i := 0; i < n; i++ {
		if x[i] != expectedX[i] {
			t.Errorf("Expected x[%d] = %d, but got %d", i, expectedX[i], x[i])
		}
		if y[i] != expectedY[i] {
			t.Errorf("Expected y[%d] = %d, but got %d", i, expectedY[i], y[i])
		}
		if y[x[i]] != i {
			t.Errorf("Row %d assigned to column %d but column assigned to row %d", i, x[i], y[x[i]])
		}
		total += costMatrix[i][x[i]]
	}

	if best := bruteForceCost(costMatrix); total != best {
		t.Errorf("Expected optimal cost %v, but got %v", best, total)
	}
}

func TestSolveLAPJV(t *testing.T) {
	costMatrix1 := [][]float64{
		{4, 1, 3, 2},
		{2, 0, 5, 3},
		{3, 2, 2, 3},
		{2, 3, 3, 2},
	}

	expectedX1 := []int{3, 1, 2, 0}
	expectedY1 := []int{3, 1, 2, 0}

	costMatrix2 := [][]float64{
		{10, 19, 8, 15},
		{10, 18, 7, 17},
		{13, 16, 9, 14},
		{12, 19, 8, 18},
	}

	expectedX2 := []int{3, 0, 1, 2}
	expectedY2 := []int{1, 2, 3, 0}

	t.Run("Test Case 1", func(t *testing.T) {
		runLapjvTest(t, costMatrix1, expectedX1, expectedY1)
	})

	t.Run("Test Case 2", func(t *testing.T) {
		runLapjvTest(t, costMatrix2, expectedX2, expectedY2)
	})
}

func TestSolveLAPJVRejectsNonSquare(t *testing.T) {

	_, _, err := solveLAPJV([][]float64{{1, 2}, {3}})

	if err == nil {
		t.Errorf("Expected an error for a non square matrix")
	}
}

func TestHungarianPairsMaximisesTotalOverlap(t *testing.T) {

	ious := [][]float64{
		{0.9, 0.8},
		{0.7, 0},
	}

	pairs, err := hungarianPairs(ious, 0)
	if err != nil {
		t.Fatalf("hungarianPairs returned an error: %v", err)
	}

	expected := [][2]int{{0, 1}, {1, 0}}

	if len(pairs) != len(expected) {
		t.Fatalf("Expected %d pairs, but got %v", len(expected), pairs)
	}

	for i := range expected {
		if pairs[i] != expected[i] {
			t.Errorf("Expected pair %d = %v, but got %v", i, expected[i], pairs[i])
		}
	}

	greedy := greedyPairs(ious, 0)

	if len(greedy) != 1 || greedy[0] != [2]int{0, 0} {
		t.Errorf("Expected greedy to take only the best pair, got %v", greedy)
	}
}

func TestHungarianPairsRespectsMinOverlap(t *testing.T) {

	ious := [][]float64{
		{0.3, 0},
		{0, 0.6},
		{0, 0},
	}

	pairs, err := hungarianPairs(ious, 0.5)
	if err != nil {
		t.Fatalf("hungarianPairs returned an error: %v", err)
	}

	if len(pairs) != 1 || pairs[0] != [2]int{1, 1} {
		t.Errorf("Expected only pair [1 1], got %v", pairs)
	}
}
